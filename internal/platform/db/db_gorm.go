package db

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	gpostgres "gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	analysisadapters "tradedesk_backend/internal/feature/analysis/adapters"
	authadapters "tradedesk_backend/internal/feature/auth/adapters"
	authentity "tradedesk_backend/internal/feature/auth/domain/entity"
	watchlistentity "tradedesk_backend/internal/feature/watchlist/domain/entity"
)

// retryInterval は接続リトライの間隔です。
const retryInterval = 3 * time.Second

// Config はデータベース接続の設定を保持します。
type Config struct {
	User         string
	Password     string
	Name         string
	Host         string
	Port         string
	SSLMode      string
	InstanceName string // Cloud SQLのインスタンス接続名（設定時はUnixソケット接続）
}

// Opener はDSNから*gorm.DBを開く関数です。テストで差し替え可能にします。
type Opener func(dsn string) (*gorm.DB, error)

// LoadConfigFromEnv は環境変数からデータベース設定を読み込みます。
func LoadConfigFromEnv() Config {
	port := os.Getenv("DB_PORT")
	if port == "" {
		port = "5432"
	}
	sslMode := os.Getenv("DB_SSLMODE")
	if sslMode == "" {
		sslMode = "disable"
	}
	return Config{
		User:         os.Getenv("DB_USER"),
		Password:     os.Getenv("DB_PASSWORD"),
		Name:         os.Getenv("DB_NAME"),
		Host:         os.Getenv("DB_HOST"),
		Port:         port,
		SSLMode:      sslMode,
		InstanceName: os.Getenv("INSTANCE_CONNECTION_NAME"),
	}
}

// BuildDSN はPostgreSQL接続用のDSN文字列を組み立てます。
// InstanceNameが設定されている場合はCloud SQLのUnixソケット接続を優先します。
func BuildDSN(cfg Config) string {
	if cfg.InstanceName != "" {
		return fmt.Sprintf("host=/cloudsql/%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			cfg.InstanceName, cfg.User, cfg.Password, cfg.Name)
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port, cfg.SSLMode)
}

// ConnectWithRetry は接続に成功するまでリトライします。timeoutを超えた場合は
// 最後のエラーを返します。
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		log.Printf("DB connect failed, retrying...: %v", err)
		time.Sleep(retryInterval)
	}
}

// OpenDB は環境変数の設定でデータベースを開きます。
// DB_HOSTもINSTANCE_CONNECTION_NAMEも未設定の場合はローカル開発用にSQLiteへ
// フォールバックします。接続に失敗した場合はプロセスを終了します。
func OpenDB() *gorm.DB {
	cfg := LoadConfigFromEnv()

	var (
		db  *gorm.DB
		err error
	)
	if cfg.Host == "" && cfg.InstanceName == "" {
		// ローカル開発用フォールバック（SQLite）
		path := os.Getenv("SQLITE_PATH")
		if path == "" {
			path = "./tradedesk.db"
		}
		db, err = gorm.Open(sqlite.Open(path), gormConfig())
		if err != nil {
			log.Fatalf("failed to open sqlite database: %v", err)
		}
		abs, _ := filepath.Abs(path)
		log.Println("USING_SQLITE:", abs)
	} else {
		dsn := BuildDSN(cfg)
		db, err = ConnectWithRetry(dsn, 60*time.Second, func(dsn string) (*gorm.DB, error) {
			return gorm.Open(gpostgres.Open(dsn), gormConfig())
		})
		if err != nil {
			log.Fatalf("DB connect failed: %v", err)
		}
	}

	if os.Getenv("RUN_MIGRATIONS") == "true" {
		// マイグレーション（User, Session, Instrument, Report）
		if err := db.AutoMigrate(
			&authentity.User{},
			&authadapters.SessionModel{},
			&watchlistentity.Instrument{},
			&analysisadapters.ReportModel{},
		); err != nil {
			log.Fatalf("failed to migrate: %v", err)
		}
	}

	return db
}

// gormConfig は全接続共通のGORM設定を返します。TranslateErrorを有効にして
// 一意制約違反をgorm.ErrDuplicatedKeyへ変換します。
func gormConfig() *gorm.Config {
	return &gorm.Config{TranslateError: true}
}
