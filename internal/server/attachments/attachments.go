// Package attachments implements the rules for accepting uploaded files:
// extension allow-listing, filename sanitization, and collision-resistant
// naming. The stored name it returns is the only identifier later used to
// reference the attachment.
package attachments

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/storage"
)

// allowedExtensions is the fixed upload allow-list: images, PDF, and the
// audio containers the client-side recorder produces.
var allowedExtensions = map[string]struct{}{
	"png": {}, "jpg": {}, "jpeg": {}, "gif": {}, "pdf": {},
	"mp3": {}, "wav": {}, "webm": {}, "ogg": {},
}

// Kind labels for presentation. Derived from the stored extension only;
// the file contents are never inspected.
const (
	KindAudio = "audio"
	KindImage = "image"
	KindPDF   = "pdf"
	KindOther = "other"
)

// Ext returns the lowercased extension of filename (the part after the
// final dot), or "" when there is no dot.
func Ext(filename string) string {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 || i == len(filename)-1 {
		return ""
	}
	return strings.ToLower(filename[i+1:])
}

// Allowed reports whether filename carries an allow-listed extension.
// A filename with no dot is never allowed.
func Allowed(filename string) bool {
	_, ok := allowedExtensions[Ext(filename)]
	return ok
}

// Sanitize reduces a client-supplied filename to a safe flat base name:
// any path components are dropped, characters outside [A-Za-z0-9._-] are
// replaced with underscores, and leading dots are stripped so the result
// can never be a dotfile or escape the storage directory. An empty result
// falls back to "file".
func Sanitize(name string) string {
	// strip path, whichever separator the client used
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	s := strings.TrimLeft(b.String(), ".")
	if s == "" {
		s = "file"
	}
	return s
}

// Kind derives the presentation category (audio/image/pdf/other) from a
// stored filename. Pure, no side effects.
func Kind(filename string) string {
	switch Ext(filename) {
	case "mp3", "wav", "webm", "ogg":
		return KindAudio
	case "png", "jpg", "jpeg", "gif":
		return KindImage
	case "pdf":
		return KindPDF
	default:
		return KindOther
	}
}

// Handler accepts uploads into a blob store.
type Handler struct {
	store storage.BlobStore

	// now is a seam for tests; defaults to time.Now.
	now func() time.Time
}

func NewHandler(store storage.BlobStore) *Handler {
	return &Handler{store: store, now: time.Now}
}

// Accept validates and persists one upload, returning the stored filename.
//
// The declared filename must carry an allow-listed extension. The stored
// name is "<sanitized-base>_<unix-ts>.<ext>"; if that name is already taken
// (two identical uploads within one second), a short random suffix is added
// instead of overwriting.
func (h *Handler) Accept(ctx context.Context, declaredFilename string, r io.Reader) (string, error) {
	if r == nil || declaredFilename == "" {
		return "", common.ErrorMissingFile
	}

	ext := Ext(declaredFilename)
	if _, ok := allowedExtensions[ext]; !ok {
		return "", common.ErrorUnsupportedType
	}

	sanitized := Sanitize(declaredFilename)
	base := strings.TrimSuffix(sanitized, "."+ext)

	name := fmt.Sprintf("%s_%d.%s", base, h.now().Unix(), ext)

	err := h.store.Save(ctx, name, r)
	if errors.Is(err, storage.ErrExists) {
		suffix, rerr := common.MakeRandHexString(4)
		if rerr != nil {
			return "", fmt.Errorf("%w: %v", common.ErrorStorageFailure, rerr)
		}
		name = fmt.Sprintf("%s_%d_%s.%s", base, h.now().Unix(), suffix, ext)
		err = h.store.Save(ctx, name, r)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorStorageFailure, err)
	}

	return name, nil
}

// AcceptPrestored validates a client-supplied reference to a recording that
// was already stored via the recorder endpoint. The token is sanitized and
// must pass the same allow-list check as a direct upload; nothing is
// written.
func (h *Handler) AcceptPrestored(token string) (string, error) {
	if token == "" {
		return "", common.ErrorMissingFile
	}

	name := Sanitize(token)
	if !Allowed(name) {
		return "", common.ErrorUnsupportedType
	}

	return name, nil
}
