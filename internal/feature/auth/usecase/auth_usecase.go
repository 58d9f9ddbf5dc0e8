package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"tradedesk_backend/internal/feature/auth/domain/entity"
)

const (
	// minPasswordLength はパスワードの最低文字数を定義します。
	minPasswordLength = 8

	// sessionTTL はリフレッシュトークンの有効期間を定義します。
	sessionTTL = 7 * 24 * time.Hour

	// maxSessionsPerUser は1ユーザーが同時に保持できるセッション数の上限です。
	// 上限を超えた場合は最も古いセッションが破棄されます。
	maxSessionsPerUser = 5

	// sessionIDBytes はセッションID（リフレッシュトークン）の乱数バイト長です。
	// hexエンコード後は64文字になります。
	sessionIDBytes = 32

	// defaultAccessTTL はアクセストークンの既定の有効期間です。
	defaultAccessTTL = 15 * time.Minute
)

// dummyPasswordHash はユーザー未検出時のタイミング攻撃緩和に使うダミーハッシュです。
// bcrypt.CompareHashAndPasswordが常に実行されることを保証します。
const dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーをストレージに永続化します。
	// 同じメールアドレスのユーザーが既に存在する場合、ErrEmailAlreadyExistsを返します。
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail は指定されたメールアドレスに一致するユーザーを取得します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID は指定されたIDに一致するユーザーを取得します。
	FindByID(ctx context.Context, id uint) (*entity.User, error)
}

// JWTGenerator はアクセストークン生成のインターフェースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（platform/jwt）ではなくコンシューマー（usecase）が定義します。
type JWTGenerator interface {
	// GenerateToken は指定されたユーザーの署名済みJWTトークンを生成します。
	GenerateToken(userID uint, email string) (string, error)
}

// TokenPair はログイン・リフレッシュ成功時に発行されるトークンの組です。
type TokenPair struct {
	AccessToken  string // 署名済みJWT
	RefreshToken string // セッションID（64文字hex）
	ExpiresIn    int64  // アクセストークンの有効期間（秒）
}

// ClientInfo はセッション監査用のクライアント情報です。
type ClientInfo struct {
	UserAgent string
	IPAddress string
}

// AuthUsecase は認証ビジネスロジックを実装します。
type AuthUsecase struct {
	users        UserRepository
	sessions     SessionRepository
	jwtGenerator JWTGenerator
	accessTTL    time.Duration
}

// NewAuthUsecase はAuthUsecaseの新しいインスタンスを生成します。
// accessTTLが0以下の場合はデフォルト値を使用します。
func NewAuthUsecase(users UserRepository, sessions SessionRepository, jwtGenerator JWTGenerator, accessTTL time.Duration) *AuthUsecase {
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	return &AuthUsecase{
		users:        users,
		sessions:     sessions,
		jwtGenerator: jwtGenerator,
		accessTTL:    accessTTL,
	}
}

// validatePassword はパスワードがセキュリティ要件を満たしているかチェックします。
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", minPasswordLength)
	}
	return nil
}

// Signup はハッシュ化されたパスワードで新規ユーザーを登録します。
func (u *AuthUsecase) Signup(ctx context.Context, email, password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user := &entity.User{Email: email, Password: string(hashed)}
	return u.users.Create(ctx, user)
}

// Login はユーザーを認証し、アクセストークンとリフレッシュトークンを発行します。
// タイミング攻撃を防止するため、ユーザーが存在しない場合でもbcrypt比較を実行します。
func (u *AuthUsecase) Login(ctx context.Context, email, password string, client ClientInfo) (*TokenPair, error) {
	user, err := u.users.FindByEmail(ctx, email)

	// ユーザー未検出でも比較コストを揃えるためのダミーハッシュ
	passwordHash := dummyPasswordHash
	if err == nil {
		passwordHash = user.Password
	}

	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))

	// ユーザー未検出またはパスワード不一致の場合、汎用エラーを返す
	if err != nil || compareErr != nil {
		return nil, ErrInvalidCredentials
	}

	return u.issueTokens(ctx, user, client)
}

// Refresh はリフレッシュトークンを検証し、新しいトークンペアを発行します。
// トークンはローテーションされ、使用済みのものは失効します。
func (u *AuthUsecase) Refresh(ctx context.Context, refreshToken string, client ClientInfo) (*TokenPair, error) {
	if len(refreshToken) != sessionIDBytes*2 {
		return nil, ErrInvalidRefreshToken
	}

	session, err := u.sessions.FindByID(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	if session.IsRevoked() {
		// 失効済みトークンの再利用はトークン窃取の兆候とみなし、
		// 該当ユーザーの全セッションを失効させる
		if err := u.sessions.RevokeAllByUserID(ctx, session.UserID); err != nil {
			return nil, fmt.Errorf("failed to revoke sessions: %w", err)
		}
		return nil, ErrSessionRevoked
	}
	if session.IsExpired() {
		return nil, ErrSessionExpired
	}

	user, err := u.users.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	// ローテーション: 使用済みセッションを失効させてから新しいセッションを発行する
	if err := u.sessions.Revoke(ctx, session.ID); err != nil {
		return nil, err
	}

	return u.issueTokens(ctx, user, client)
}

// Logout は指定されたリフレッシュトークンのセッションを失効させます。
func (u *AuthUsecase) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return ErrInvalidRefreshToken
	}
	return u.sessions.Revoke(ctx, refreshToken)
}

// issueTokens はアクセストークンの生成とセッションの発行をまとめて行います。
func (u *AuthUsecase) issueTokens(ctx context.Context, user *entity.User, client ClientInfo) (*TokenPair, error) {
	accessToken, err := u.jwtGenerator.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	refreshToken, err := u.openSession(ctx, user.ID, client)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(u.accessTTL.Seconds()),
	}, nil
}

// openSession は新しいセッションを作成し、そのID（リフレッシュトークン）を返します。
// セッション数が上限に達している場合は最も古いセッションを破棄します。
func (u *AuthUsecase) openSession(ctx context.Context, userID uint, client ClientInfo) (string, error) {
	count, err := u.sessions.CountByUserID(ctx, userID)
	if err != nil {
		return "", err
	}
	if count >= maxSessionsPerUser {
		if err := u.sessions.DeleteOldestByUserID(ctx, userID); err != nil {
			return "", err
		}
	}

	id, err := newSessionID()
	if err != nil {
		return "", err
	}

	now := time.Now()
	session := &entity.Session{
		ID:        id,
		UserID:    userID,
		UserAgent: client.UserAgent,
		IPAddress: client.IPAddress,
		CreatedAt: now,
		ExpiresAt: now.Add(sessionTTL),
	}
	if err := u.sessions.Create(ctx, session); err != nil {
		return "", err
	}
	return id, nil
}

// newSessionID は暗号論的乱数からセッションIDを生成します。
func newSessionID() (string, error) {
	b := make([]byte, sessionIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	return hex.EncodeToString(b), nil
}
