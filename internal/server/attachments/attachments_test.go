package attachments

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHandler(t *testing.T) (*Handler, *storage.LocalStore) {
	t.Helper()
	store, err := storage.NewLocalStore(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)
	return NewHandler(store), store
}

func TestExt(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"photo.PNG", "png"},
		{"archive.tar.gz", "gz"},
		{"noext", ""},
		{"trailingdot.", ""},
		{".hidden", "hidden"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Ext(tc.in), "Ext(%q)", tc.in)
	}
}

func TestAllowed(t *testing.T) {
	for _, name := range []string{"a.png", "b.JPG", "c.jpeg", "d.gif", "e.pdf", "f.mp3", "g.wav", "h.webm", "i.ogg"} {
		assert.True(t, Allowed(name), "expected %q to be allowed", name)
	}
	for _, name := range []string{"evil.exe", "script.sh", "noext", "page.html", "doc.docx"} {
		assert.False(t, Allowed(name), "expected %q to be rejected", name)
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"report.pdf", "report.pdf"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\x\cat.png`, "cat.png"},
		{"my photo (1).jpg", "my_photo__1_.jpg"},
		{"...hidden.png", "hidden.png"},
		{"///", "file"},
		{"резюме.pdf", "______.pdf"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Sanitize(tc.in), "Sanitize(%q)", tc.in)
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"memo_1700000000.mp3", KindAudio},
		{"memo_1700000000.webm", KindAudio},
		{"cat_1700000000.png", KindImage},
		{"scan_1700000000.pdf", KindPDF},
		{"mystery", KindOther},
		{"notes_1700000000.txt", KindOther},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Kind(tc.in))
	}
}

func TestAccept_StoresWithTimestampName(t *testing.T) {
	h, store := newHandler(t)
	h.now = func() time.Time { return time.Unix(1700000000, 0) }

	name, err := h.Accept(context.Background(), "cat.png", strings.NewReader("img"))
	require.NoError(t, err)
	assert.Equal(t, "cat_1700000000.png", name)

	rc, err := store.Open(context.Background(), name)
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "img", string(b))
}

func TestAccept_RejectsUnsupportedType(t *testing.T) {
	h, store := newHandler(t)

	_, err := h.Accept(context.Background(), "evil.exe", strings.NewReader("x"))
	require.ErrorIs(t, err, common.ErrorUnsupportedType)

	// nothing written
	_, err = store.Open(context.Background(), "evil.exe")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestAccept_RejectsNoExtension(t *testing.T) {
	h, _ := newHandler(t)

	_, err := h.Accept(context.Background(), "noext", strings.NewReader("x"))
	require.ErrorIs(t, err, common.ErrorUnsupportedType)
}

func TestAccept_MissingFile(t *testing.T) {
	h, _ := newHandler(t)

	_, err := h.Accept(context.Background(), "", strings.NewReader("x"))
	require.ErrorIs(t, err, common.ErrorMissingFile)

	_, err = h.Accept(context.Background(), "cat.png", nil)
	require.ErrorIs(t, err, common.ErrorMissingFile)
}

func TestAccept_SameSecondCollisionGetsSuffix(t *testing.T) {
	h, _ := newHandler(t)
	h.now = func() time.Time { return time.Unix(1700000000, 0) }

	first, err := h.Accept(context.Background(), "cat.png", strings.NewReader("one"))
	require.NoError(t, err)

	second, err := h.Accept(context.Background(), "cat.png", strings.NewReader("two"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "second upload must not reuse the first name")
	assert.True(t, strings.HasPrefix(second, "cat_1700000000_"), "got %q", second)
	assert.True(t, strings.HasSuffix(second, ".png"))
}

func TestAccept_SanitizesTraversal(t *testing.T) {
	h, _ := newHandler(t)
	h.now = func() time.Time { return time.Unix(1700000000, 0) }

	name, err := h.Accept(context.Background(), "../../escape.png", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "escape_1700000000.png", name)
}

func TestAcceptPrestored(t *testing.T) {
	h, _ := newHandler(t)

	name, err := h.AcceptPrestored("memo_1700000000.webm")
	require.NoError(t, err)
	assert.Equal(t, "memo_1700000000.webm", name)

	// the recorder token gets the same allow-list treatment as uploads
	_, err = h.AcceptPrestored("shell.php")
	require.ErrorIs(t, err, common.ErrorUnsupportedType)

	_, err = h.AcceptPrestored("")
	require.ErrorIs(t, err, common.ErrorMissingFile)

	name, err = h.AcceptPrestored("../../memo_1700000000.ogg")
	require.NoError(t, err)
	assert.Equal(t, "memo_1700000000.ogg", name)
}

func TestAccept_StorageFailureIsWrapped(t *testing.T) {
	h := NewHandler(failingStore{})

	_, err := h.Accept(context.Background(), "cat.png", strings.NewReader("x"))
	require.ErrorIs(t, err, common.ErrorStorageFailure)
}

type failingStore struct{}

func (failingStore) Save(ctx context.Context, name string, r io.Reader) error {
	return fmt.Errorf("disk full")
}

func (failingStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	return nil, common.ErrorNotFound
}
