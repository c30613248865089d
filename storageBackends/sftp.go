package storagebackends

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"framelapse/logger"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// connectSFTP dials the host from the location and authenticates with the
// credential set. accessInfo may contain: port (default 22), user, password
// or privateKey (base64 or raw PEM).
func connectSFTP(ctx context.Context, accessInfo map[string]string, host string) (*ssh.Client, *sftp.Client, error) {
	port := accessInfo["port"]
	if port == "" {
		port = "22"
	}
	user := accessInfo["user"]
	password := accessInfo["password"]
	privateKey := accessInfo["privateKey"]

	if host == "" || user == "" {
		return nil, nil, fmt.Errorf("missing required sftp host or user")
	}

	var auths []ssh.AuthMethod
	if privateKey != "" {
		// try to decode as base64, fall back to raw
		keyBytes, err := base64.StdEncoding.DecodeString(privateKey)
		if err != nil {
			keyBytes = []byte(privateKey)
		}
		signer, err := ssh.ParsePrivateKey(keyBytes)
		if err != nil {
			return nil, nil, fmt.Errorf("parse private key: %w", err)
		}
		auths = append(auths, ssh.PublicKeys(signer))
	} else if password != "" {
		auths = append(auths, ssh.Password(password))
	} else {
		return nil, nil, fmt.Errorf("no auth method provided; set password or privateKey in credentials")
	}

	config := &ssh.ClientConfig{
		User:            user,
		Auth:            auths,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         10 * time.Second,
	}

	addr := net.JoinHostPort(host, port)

	d := net.Dialer{}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("dial tcp %s: %w", addr, err)
	}

	clientConn, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		return nil, nil, fmt.Errorf("ssh handshake with %s: %w", addr, err)
	}
	sshClient := ssh.NewClient(clientConn, chans, reqs)

	sftpClient, err := sftp.NewClient(sshClient)
	if err != nil {
		sshClient.Close()
		return nil, nil, fmt.Errorf("create sftp client: %w", err)
	}

	return sshClient, sftpClient, nil
}

// DownloadFromSFTP recursively fetches every file under the remote path into
// destDir, keeping the layout relative to it.
func DownloadFromSFTP(ctx context.Context, accessInfo map[string]string, src Location, destDir string) error {
	sshClient, client, err := connectSFTP(ctx, accessInfo, src.Bucket)
	if err != nil {
		return err
	}
	defer sshClient.Close()
	defer client.Close()

	root := "/" + strings.TrimPrefix(src.Path, "/")
	count := 0

	walker := client.Walk(root)
	for walker.Step() {
		if err := walker.Err(); err != nil {
			return fmt.Errorf("walk %s: %w", walker.Path(), err)
		}
		if walker.Stat().IsDir() {
			continue
		}

		remotePath := walker.Path()
		rel := strings.TrimPrefix(strings.TrimPrefix(remotePath, root), "/")
		localPath := filepath.Join(destDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(localPath), 0755); err != nil {
			return fmt.Errorf("mkdir for %s: %w", localPath, err)
		}

		rf, err := client.Open(remotePath)
		if err != nil {
			return fmt.Errorf("open remote file %s: %w", remotePath, err)
		}

		lf, err := os.Create(localPath)
		if err != nil {
			rf.Close()
			return fmt.Errorf("create %s: %w", localPath, err)
		}

		_, err = io.Copy(lf, rf)
		rf.Close()
		lf.Close()
		if err != nil {
			return fmt.Errorf("copy remote file %s: %w", remotePath, err)
		}
		count++
	}

	logger.Infof("Downloaded %d files from sftp://%s%s", count, src.Bucket, root)
	return nil
}

// UploadToSFTP uploads a local file to the destination path, creating remote
// directories as needed.
func UploadToSFTP(ctx context.Context, accessInfo map[string]string, localPath string, dest Location) error {
	sshClient, client, err := connectSFTP(ctx, accessInfo, dest.Bucket)
	if err != nil {
		return err
	}
	defer sshClient.Close()
	defer client.Close()

	remotePath := "/" + strings.TrimPrefix(dest.Path, "/")

	dir := path.Dir(remotePath)
	if err := mkdirAllSFTP(client, dir); err != nil {
		return fmt.Errorf("ensure remote dir %s: %w", dir, err)
	}

	f, err := client.Create(remotePath)
	if err != nil {
		return fmt.Errorf("create remote file %s: %w", remotePath, err)
	}
	defer f.Close()

	lf, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", localPath, err)
	}
	defer lf.Close()

	if _, err := io.Copy(f, lf); err != nil {
		return fmt.Errorf("copy to remote file %s: %w", remotePath, err)
	}

	logger.Infof("Successfully uploaded '%s' to %s", remotePath, dest.Bucket)
	return nil
}

// mkdirAllSFTP mimics os.MkdirAll for an SFTP server by creating each segment
// of the path.
func mkdirAllSFTP(client *sftp.Client, dir string) error {
	if dir == "" || dir == "." || dir == "/" {
		return nil
	}

	parts := strings.Split(dir, "/")
	cur := ""
	if strings.HasPrefix(dir, "/") {
		cur = "/"
	}

	for _, p := range parts {
		if p == "" {
			continue
		}
		cur = path.Join(cur, p)
		if _, err := client.Stat(cur); err != nil {
			if os.IsNotExist(err) {
				if err := client.Mkdir(cur); err != nil {
					return fmt.Errorf("mkdir %s: %w", cur, err)
				}
			} else {
				return fmt.Errorf("stat %s: %w", cur, err)
			}
		}
	}
	return nil
}
