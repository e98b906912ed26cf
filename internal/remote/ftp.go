package remote

import (
	"errors"
	"fmt"
	"io"
	"net/textproto"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
)

const dialTimeout = 10 * time.Second

// Dial opens an FTP session to addr (host:port). Satisfies DialFunc.
func Dial(addr string) (Conn, error) {
	raw, err := ftp.Dial(addr, ftp.DialWithTimeout(dialTimeout))
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", addr, err)
	}
	return &ftpConn{raw: raw}, nil
}

type ftpConn struct {
	raw *ftp.ServerConn
}

var _ Conn = (*ftpConn)(nil)

func (c *ftpConn) Login(user, password string) error {
	if err := c.raw.Login(user, password); err != nil {
		return fmt.Errorf("login as %s: %w", user, err)
	}
	return nil
}

func (c *ftpConn) MakeDir(dir string) error {
	err := c.raw.MakeDir(dir)
	if err == nil {
		return nil
	}
	if alreadyExistsReply(err) {
		return ErrExist
	}
	// Servers disagree on the 550 text for an existing target. If the
	// directory is CWD-able right after a failed MKD, it exists.
	if cdErr := c.raw.ChangeDir(dir); cdErr == nil {
		return ErrExist
	}
	return fmt.Errorf("mkdir %s: %w", dir, err)
}

func (c *ftpConn) ChangeDir(dir string) error {
	if err := c.raw.ChangeDir(dir); err != nil {
		return fmt.Errorf("cd %s: %w", dir, err)
	}
	return nil
}

func (c *ftpConn) CurrentDir() (string, error) {
	return c.raw.CurrentDir()
}

func (c *ftpConn) Upload(path string, r io.Reader, mode Mode) error {
	transferType := ftp.TransferTypeBinary
	if mode == ModeText {
		transferType = ftp.TransferTypeASCII
	}
	if err := c.raw.Type(transferType); err != nil {
		return fmt.Errorf("set transfer type %s: %w", mode, err)
	}
	if err := c.raw.Stor(path, r); err != nil {
		return fmt.Errorf("store %s: %w", path, err)
	}
	return nil
}

func (c *ftpConn) Quit() error {
	return c.raw.Quit()
}

// alreadyExistsReply matches 550 replies whose text names an existing target.
func alreadyExistsReply(err error) bool {
	var proto *textproto.Error
	if !errors.As(err, &proto) {
		return false
	}
	if proto.Code != ftp.StatusFileUnavailable {
		return false
	}
	return strings.Contains(strings.ToLower(proto.Msg), "exist")
}
