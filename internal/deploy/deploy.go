// Package deploy copies the built library into the mod loader or geode project.
package deploy

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	ferrors "git.home.luguber.info/inful/livebuild/internal/foundation/errors"
	"git.home.luguber.info/inful/livebuild/internal/logfields"
)

// Deployment describes a completed copy.
type Deployment struct {
	Source      string
	Destination string
	Bytes       int64
	SHA256      string
}

// ErrSameFile is returned when the destination already is the source file.
var ErrSameFile = errors.New("source and destination are the same file")

// CopyFile copies src to dst, overwriting dst and giving it src's permission
// bits. The destination directory must already exist.
func CopyFile(src, dst string) (Deployment, error) {
	d := Deployment{Source: src, Destination: dst}

	in, err := os.Open(src)
	if err != nil {
		return d, copyError(err, "open build artifact", src, dst)
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return d, copyError(err, "stat build artifact", src, dst)
	}
	// Truncating dst would otherwise wipe the artifact before it is read.
	if dstInfo, err := os.Stat(dst); err == nil && os.SameFile(info, dstInfo) {
		return d, copyError(ErrSameFile, "refusing to copy artifact onto itself", src, dst)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return d, copyError(err, "open destination", src, dst)
	}

	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(out, h), in)
	if err != nil {
		_ = out.Close()
		return d, copyError(err, "copy artifact", src, dst)
	}
	if err := out.Close(); err != nil {
		return d, copyError(err, "close destination", src, dst)
	}
	// OpenFile only applies the mode on create; an overwritten file keeps its old bits.
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return d, copyError(err, "preserve permissions", src, dst)
	}

	d.Bytes = n
	d.SHA256 = hex.EncodeToString(h.Sum(nil))
	return d, nil
}

func copyError(err error, msg, src, dst string) error {
	return ferrors.WrapError(err, ferrors.CategoryDeploy, msg).
		WithContext(logfields.KeySource, src).
		WithContext(logfields.KeyDest, dst).
		Build()
}

// Deployer places build artifacts into a destination directory.
type Deployer struct {
	logger *slog.Logger
}

// NewDeployer returns a Deployer logging through logger (slog.Default when nil).
func NewDeployer(logger *slog.Logger) *Deployer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Deployer{logger: logger}
}

// Deploy copies src into dir under name.
func (d *Deployer) Deploy(src, dir, name string) (Deployment, error) {
	dst := filepath.Join(dir, name)
	dep, err := CopyFile(src, dst)
	if err != nil {
		return dep, err
	}
	d.logger.Info("Deployed artifact",
		logfields.Source(src),
		logfields.Dest(dst),
		slog.Int64("bytes", dep.Bytes),
		slog.String("sha256", dep.SHA256))
	return dep, nil
}
