package imagestore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"sync"
	"time"

	"github.com/jlaffaye/ftp"
)

// FTPConfig holds FTP server settings
type FTPConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	BaseDir  string
	Timeout  time.Duration
}

// FTPBackend stores images on an FTP server. One control connection is
// shared and serialized; it is re-dialed after a failed command.
type FTPBackend struct {
	cfg  FTPConfig
	mu   sync.Mutex
	conn *ftp.ServerConn
}

func NewFTPBackend(cfg FTPConfig) *FTPBackend {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &FTPBackend{cfg: cfg}
}

// connect establishes connection to FTP server. Caller holds mu.
func (b *FTPBackend) connect(ctx context.Context) error {
	if b.conn != nil {
		return nil
	}
	addr := b.cfg.Host + ":" + b.cfg.Port
	conn, err := ftp.Dial(addr, ftp.DialWithTimeout(b.cfg.Timeout), ftp.DialWithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to connect to FTP: %w", err)
	}
	if err := conn.Login(b.cfg.User, b.cfg.Password); err != nil {
		conn.Quit()
		return fmt.Errorf("failed to login to FTP: %w", err)
	}
	b.conn = conn
	return nil
}

// do runs fn on a live connection, retrying once on a fresh connection.
func (b *FTPBackend) do(ctx context.Context, fn func(conn *ftp.ServerConn) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var err error
	for attempt := 0; attempt < 2; attempt++ {
		if err = b.connect(ctx); err != nil {
			return err
		}
		if err = fn(b.conn); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
		b.conn.Quit()
		b.conn = nil
	}
	return err
}

func (b *FTPBackend) remotePath(p string) string {
	return path.Join(b.cfg.BaseDir, p)
}

func (b *FTPBackend) Put(ctx context.Context, p string, data io.Reader) error {
	payload, err := io.ReadAll(data)
	if err != nil {
		return fmt.Errorf("failed to read upload: %w", err)
	}
	remote := b.remotePath(p)
	return b.do(ctx, func(conn *ftp.ServerConn) error {
		// MakeDir fails when the directory exists; Stor reports real problems.
		conn.MakeDir(path.Dir(remote))
		if err := conn.Stor(remote, bytes.NewReader(payload)); err != nil {
			return fmt.Errorf("failed to upload file: %w", err)
		}
		return nil
	})
}

func (b *FTPBackend) Open(ctx context.Context, p string) (io.ReadCloser, error) {
	var payload []byte
	remote := b.remotePath(p)
	err := b.do(ctx, func(conn *ftp.ServerConn) error {
		if _, err := conn.FileSize(remote); err != nil {
			payload = nil
			return nil
		}
		resp, err := conn.Retr(remote)
		if err != nil {
			return fmt.Errorf("failed to download file: %w", err)
		}
		defer resp.Close()
		payload, err = io.ReadAll(resp)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		if payload == nil {
			payload = []byte{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(payload)), nil
}

func (b *FTPBackend) Exists(ctx context.Context, p string) (bool, error) {
	exists := false
	remote := b.remotePath(p)
	err := b.do(ctx, func(conn *ftp.ServerConn) error {
		if err := conn.NoOp(); err != nil {
			return err
		}
		_, err := conn.FileSize(remote)
		exists = err == nil
		return nil
	})
	return exists, err
}

func (b *FTPBackend) Delete(ctx context.Context, p string) error {
	remote := b.remotePath(p)
	return b.do(ctx, func(conn *ftp.ServerConn) error {
		if _, err := conn.FileSize(remote); err != nil {
			return nil
		}
		if err := conn.Delete(remote); err != nil {
			return fmt.Errorf("failed to delete file: %w", err)
		}
		return nil
	})
}

// Close closes the FTP connection
func (b *FTPBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn == nil {
		return nil
	}
	err := b.conn.Quit()
	b.conn = nil
	return err
}
