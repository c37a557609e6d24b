package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "app:\n  env: test\n"))
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.HttpPort)
	assert.Equal(t, "http://127.0.0.1:1248", cfg.Wallet.RpcUrl)
	assert.Equal(t, 2*time.Second, cfg.Wallet.PollInterval)
	assert.Equal(t, 10*time.Minute, cfg.Wallet.ConfirmTimeout)
	assert.Equal(t, "leveldb", cfg.Store.Driver)
	assert.Equal(t, "lastTxHash", cfg.Store.Key)
	assert.Equal(t, "console_events_tx", cfg.Journal.Topic)
	assert.False(t, cfg.Journal.Enabled)
}

func TestLoadFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
app:
  env: production
  http_port: "9090"
wallet:
  rpc_url: ws://127.0.0.1:8546
  confirm_timeout: 30s
store:
  driver: redis
journal:
  enabled: true
  driver: kafka
kafka:
  brokers: [kafka-1:9092, kafka-2:9092]
`))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.HttpPort)
	assert.Equal(t, "ws://127.0.0.1:8546", cfg.Wallet.RpcUrl)
	assert.Equal(t, 30*time.Second, cfg.Wallet.ConfirmTimeout)
	assert.Equal(t, "redis", cfg.Store.Driver)
	assert.True(t, cfg.Journal.Enabled)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("WALLET_RPC_URL", "http://signer.local:8550")
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := Load(writeConfig(t, "app:\n  env: test\n"))
	require.NoError(t, err)
	assert.Equal(t, "http://signer.local:8550", cfg.Wallet.RpcUrl)
	assert.Equal(t, "memory", cfg.Store.Driver)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad driver", "store:\n  driver: sqlite\n"},
		{"bad env", "app:\n  env: staging\n"},
		{"bad port", "app:\n  http_port: http\n"},
		{"bad journal driver", "journal:\n  driver: nats\n"},
		{"bad url", "wallet:\n  rpc_url: not a url\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestDBStrings(t *testing.T) {
	db := DBConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "n"}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5432 sslmode=disable", db.DSN())
	assert.Equal(t, "postgres://u:p@db:5432/n?sslmode=disable", db.URL())
}
