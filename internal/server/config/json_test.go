package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJson_NoFileFlagIsNoop(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()
	os.Args = []string{"server"}

	var c Config
	c.LoadDefaults()
	parseJson(&c)

	assert.Equal(t, ":8080", c.EndpointAddrHTTP)
}

func TestParseJson_OverlaysValues(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	body := `{
		"endpoint_addr_http": ":3000",
		"database_dsn": "postgres://u:p@db:5432/todo",
		"secret_key": "from-json",
		"session_validity_duration": "45m",
		"upload_dir": "/srv/uploads",
		"storage_backend": "s3",
		"s3_root_user": "root",
		"s3_root_password": "pw",
		"s3_bucket": "files",
		"s3_region": "eu-west-1",
		"s3_base_endpoint": "http://minio:9000/"
	}`

	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	os.Args = []string{"server", "-c", path}

	var c Config
	c.LoadDefaults()
	parseJson(&c)

	assert.Equal(t, ":3000", c.EndpointAddrHTTP)
	assert.Equal(t, "postgres://u:p@db:5432/todo", c.DatabaseDSN)
	assert.Equal(t, "from-json", c.SecretKey)
	assert.Equal(t, 45*time.Minute, c.SessionValidityDuration)
	assert.Equal(t, "/srv/uploads", c.UploadDir)
	assert.Equal(t, StorageBackendS3, c.StorageBackend)
	assert.Equal(t, "root", c.S3RootUser)
	assert.Equal(t, "pw", c.S3RootPassword)
	assert.Equal(t, "files", c.S3Bucket)
	assert.Equal(t, "eu-west-1", c.S3Region)
	assert.Equal(t, "http://minio:9000/", c.S3BaseEndpoint)
}

func TestParseJson_PanicsOnMissingFile(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{"server", "-c", filepath.Join(t.TempDir(), "nope.json")}

	var c Config
	c.LoadDefaults()

	require.Panics(t, func() { parseJson(&c) })
}
