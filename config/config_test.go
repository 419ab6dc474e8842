package config

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/etnz/papertrade"
	"github.com/sirupsen/logrus"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := Config{
		ListenAddr: ":8080",
		Currency:   "USD",
		PricesPath: papertrade.DefaultPricesPath,
		KafkaTopic: "papertrade.transactions",
		LogLevel:   "info",
		LogFormat:  "text",
	}
	if cfg.ListenAddr != want.ListenAddr || cfg.Currency != want.Currency || cfg.PricesFile != "" ||
		cfg.PricesPath != want.PricesPath || len(cfg.KafkaBrokers) != 0 || cfg.KafkaTopic != want.KafkaTopic ||
		cfg.LogLevel != want.LogLevel || cfg.LogFormat != want.LogFormat {
		t.Errorf("Load() = %+v, want %+v", cfg, want)
	}
}

func TestLoad_Environment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PTS_LISTEN_ADDR", "127.0.0.1:9000")
	t.Setenv("PTS_CURRENCY", "EUR")
	t.Setenv("PTS_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("PTS_LOG_FORMAT", "json")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ListenAddr != "127.0.0.1:9000" {
		t.Errorf("ListenAddr = %q, want 127.0.0.1:9000", cfg.ListenAddr)
	}
	if cfg.Currency != "EUR" {
		t.Errorf("Currency = %q, want EUR", cfg.Currency)
	}
	if want := []string{"k1:9092", "k2:9092"}; !slices.Equal(cfg.KafkaBrokers, want) {
		t.Errorf("KafkaBrokers = %q, want %q", cfg.KafkaBrokers, want)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, want json", cfg.LogFormat)
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	content := "listen_addr: \":7070\"\nkafka_topic: trades\nlog_level: debug\n"
	if err := os.WriteFile(filepath.Join(dir, "papertrade.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PTS_LOG_LEVEL", "warn") // environment wins over the file.

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ListenAddr != ":7070" || cfg.KafkaTopic != "trades" || cfg.LogLevel != "warn" {
		t.Errorf("Load() = %+v, want listen :7070, topic trades, level warn", cfg)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Load(missing file) succeeded, want an error")
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("PTS_KAFKA_TOPIC=from-dotenv\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("PTS_KAFKA_TOPIC") })

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.KafkaTopic != "from-dotenv" {
		t.Errorf("KafkaTopic = %q, want from-dotenv", cfg.KafkaTopic)
	}
}

func TestLoad_Invalid(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PTS_CURRENCY", "NOPE")
	t.Setenv("PTS_LOG_FORMAT", "xml")

	_, err := Load("")
	if err == nil {
		t.Fatal("Load() succeeded, want an error")
	}
	for _, key := range []string{"currency", "log_format"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("Load() error = %q, want it to mention %s", err, key)
		}
	}
}

func TestConfigureLogger(t *testing.T) {
	t.Cleanup(func() {
		logrus.SetOutput(os.Stderr)
		logrus.SetLevel(logrus.InfoLevel)
		logrus.SetFormatter(&logrus.TextFormatter{})
	})

	var buf bytes.Buffer
	cfg := Config{LogLevel: "warn", LogFormat: "json"}
	if err := cfg.ConfigureLogger(&buf); err != nil {
		t.Fatalf("ConfigureLogger() error = %v", err)
	}
	logrus.Info("hidden")
	logrus.WithField("account", "A1").Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message logged at warn level: %s", out)
	}
	if !strings.Contains(out, `"message":"shown"`) || !strings.Contains(out, `"severity":"warning"`) {
		t.Errorf("log output = %s, want a json warning", out)
	}
}

func TestConfig_Oracle(t *testing.T) {
	cfg := Config{Currency: "USD", PricesPath: papertrade.DefaultPricesPath}
	oracle, err := cfg.Oracle(context.Background())
	if err != nil {
		t.Fatalf("Oracle() error = %v", err)
	}
	if p, ok := oracle.Price("AAPL"); !ok || !p.Equal(papertrade.M(150, "USD")) {
		t.Errorf("Price(AAPL) = %v, %v, want $150.00", p, ok)
	}

	file := filepath.Join(t.TempDir(), "prices.json")
	if err := os.WriteFile(file, []byte(`{"quotes":{"NVDA":"120.5"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg.PricesFile = file
	cfg.PricesPath = `$.quotes["%s"]`
	oracle, err = cfg.Oracle(context.Background())
	if err != nil {
		t.Fatalf("Oracle() error = %v", err)
	}
	if p, ok := oracle.Price("NVDA"); !ok || !p.Equal(papertrade.M(120.5, "USD")) {
		t.Errorf("Price(NVDA) = %v, %v, want $120.50", p, ok)
	}
}

func TestConfig_OracleURL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"AMD": 160}`))
	}))
	defer ts.Close()

	cfg := Config{Currency: "USD", PricesFile: ts.URL + "/prices.json", PricesPath: papertrade.DefaultPricesPath}
	oracle, err := cfg.Oracle(context.Background())
	if err != nil {
		t.Fatalf("Oracle() error = %v", err)
	}
	if p, ok := oracle.Price("AMD"); !ok || !p.Equal(papertrade.M(160, "USD")) {
		t.Errorf("Price(AMD) = %v, %v, want $160.00", p, ok)
	}
}
