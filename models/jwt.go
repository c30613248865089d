package models

type RenderJWT struct {
	Issuer    string    `json:"iss"` // optional
	Subject   string    `json:"sub"`
	IssuedAt  int64     `json:"iat"`
	ExpiresAt int64     `json:"exp"`
	Job       RenderJob `json:"job"`
}
