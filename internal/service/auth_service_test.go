package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	repoPostgres "github.com/superimpress/backend/internal/repository/postgres"
	"github.com/superimpress/backend/internal/service"
	"github.com/superimpress/backend/internal/testutil"
	"github.com/superimpress/backend/internal/token"
)

func TestAuthService_Register(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := repoPostgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig()
	codec := token.NewCodec(cfg.JWTSecret)
	authService := service.NewAuthService(repos.User, codec, cfg)
	ctx := context.Background()

	tests := []struct {
		name    string
		input   service.RegisterInput
		setup   func()
		wantErr error
	}{
		{
			name: "successful registration",
			input: service.RegisterInput{
				Name:     "A",
				Email:    "a@x.com",
				Password: "Secret123!",
			},
		},
		{
			name: "duplicate email",
			input: service.RegisterInput{
				Name:     "B",
				Email:    "taken@x.com",
				Password: "Secret123!",
			},
			setup: func() {
				testutil.NewUserBuilder().
					WithEmail("taken@x.com").
					Build(t, testDB.DB)
			},
			wantErr: service.ErrEmailTaken,
		},
		{
			name: "invalid email",
			input: service.RegisterInput{
				Name:     "A",
				Email:    "not-an-email",
				Password: "Secret123!",
			},
			wantErr: service.ErrValidation,
		},
		{
			name: "missing name",
			input: service.RegisterInput{
				Name:     "",
				Email:    "a@x.com",
				Password: "Secret123!",
			},
			wantErr: service.ErrValidation,
		},
		{
			name: "password too short",
			input: service.RegisterInput{
				Name:     "A",
				Email:    "a@x.com",
				Password: "Sh0rt!",
			},
			wantErr: service.ErrValidation,
		},
		{
			name: "password without special character",
			input: service.RegisterInput{
				Name:     "A",
				Email:    "a@x.com",
				Password: "Secret1234",
			},
			wantErr: service.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clean up between tests
			testDB.Truncate(t)

			if tt.setup != nil {
				tt.setup()
			}

			user, err := authService.Register(ctx, tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.NotZero(t, user.ID)
			assert.Equal(t, tt.input.Email, user.Email)
			// Stored hash must never be the plaintext
			assert.NotEqual(t, tt.input.Password, user.PasswordHash)
			assert.NotContains(t, user.PasswordHash, tt.input.Password)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := repoPostgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig()
	codec := token.NewCodec(cfg.JWTSecret)
	authService := service.NewAuthService(repos.User, codec, cfg)
	ctx := context.Background()

	user, rawPassword := testutil.NewUserBuilder().
		WithEmail("login@x.com").
		WithPassword("Correctpass1!").
		Build(t, testDB.DB)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{
			name:     "successful login",
			email:    user.Email,
			password: rawPassword,
		},
		{
			name:     "wrong password",
			email:    user.Email,
			password: "Wrongpass1!",
			wantErr:  service.ErrInvalidCredentials,
		},
		{
			name:     "unknown email",
			email:    "nobody@x.com",
			password: rawPassword,
			wantErr:  service.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := authService.Login(ctx, tt.email, tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, result.AccessToken)
			assert.NotEmpty(t, result.RefreshToken)

			// Refresh token hash is persisted on the user record
			stored, err := repos.User.GetByEmail(ctx, user.Email)
			require.NoError(t, err)
			require.NotNil(t, stored.RefreshTokenHash)
			require.NotNil(t, stored.RefreshTokenExpiresAt)
			assert.True(t, stored.RefreshTokenExpiresAt.After(time.Now()))
			// Hash, not the token itself
			assert.NotEqual(t, result.RefreshToken, *stored.RefreshTokenHash)
		})
	}
}

func TestAuthService_Refresh(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := repoPostgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig()
	codec := token.NewCodec(cfg.JWTSecret)
	authService := service.NewAuthService(repos.User, codec, cfg)
	ctx := context.Background()

	user, rawPassword := testutil.NewUserBuilder().
		WithEmail("refresh@x.com").
		WithPassword("Correctpass1!").
		Build(t, testDB.DB)

	result, err := authService.Login(ctx, user.Email, rawPassword)
	require.NoError(t, err)

	t.Run("valid refresh token", func(t *testing.T) {
		accessToken, refreshed, err := authService.Refresh(ctx, result.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, user.Email, refreshed.Email)

		claims, err := codec.Verify(accessToken)
		require.NoError(t, err)
		assert.Equal(t, token.KindAccess, claims.Kind)
		assert.Equal(t, user.Email, claims.Subject)
	})

	t.Run("access token is the wrong kind", func(t *testing.T) {
		_, _, err := authService.Refresh(ctx, result.AccessToken)
		assert.ErrorIs(t, err, service.ErrInvalidRefreshToken)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, _, err := authService.Refresh(ctx, "garbage")
		assert.ErrorIs(t, err, service.ErrInvalidRefreshToken)
	})

	t.Run("newer login invalidates older refresh token", func(t *testing.T) {
		older := result.RefreshToken

		_, err := authService.Login(ctx, user.Email, rawPassword)
		require.NoError(t, err)

		_, _, err = authService.Refresh(ctx, older)
		assert.ErrorIs(t, err, service.ErrInvalidRefreshToken)
	})

	t.Run("stored expiry in the past", func(t *testing.T) {
		fresh, err := authService.Login(ctx, user.Email, rawPassword)
		require.NoError(t, err)

		stored, err := repos.User.GetByEmail(ctx, user.Email)
		require.NoError(t, err)
		past := time.Now().Add(-time.Hour)
		stored.RefreshTokenExpiresAt = &past
		require.NoError(t, repos.User.Update(ctx, stored))

		_, _, err = authService.Refresh(ctx, fresh.RefreshToken)
		assert.ErrorIs(t, err, service.ErrExpiredRefreshToken)
	})

	t.Run("logout invalidates the refresh token", func(t *testing.T) {
		fresh, err := authService.Login(ctx, user.Email, rawPassword)
		require.NoError(t, err)

		stored, err := repos.User.GetByEmail(ctx, user.Email)
		require.NoError(t, err)
		require.NoError(t, authService.Logout(ctx, stored))

		stored, err = repos.User.GetByEmail(ctx, user.Email)
		require.NoError(t, err)
		assert.Nil(t, stored.RefreshTokenHash)
		assert.Nil(t, stored.RefreshTokenExpiresAt)

		_, _, err = authService.Refresh(ctx, fresh.RefreshToken)
		assert.ErrorIs(t, err, service.ErrInvalidRefreshToken)
	})
}

func TestAuthService_ResolveAccessToken(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := repoPostgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig()
	codec := token.NewCodec(cfg.JWTSecret)
	authService := service.NewAuthService(repos.User, codec, cfg)
	ctx := context.Background()

	user, rawPassword := testutil.NewUserBuilder().
		WithEmail("resolve@x.com").
		WithPassword("Correctpass1!").
		Build(t, testDB.DB)

	result, err := authService.Login(ctx, user.Email, rawPassword)
	require.NoError(t, err)

	t.Run("valid access token", func(t *testing.T) {
		resolved, err := authService.ResolveAccessToken(ctx, result.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID, resolved.ID)
	})

	t.Run("refresh token is rejected", func(t *testing.T) {
		_, err := authService.ResolveAccessToken(ctx, result.RefreshToken)
		assert.Error(t, err)
	})

	t.Run("token for a deleted user", func(t *testing.T) {
		ghostToken, err := codec.Issue("ghost@x.com", token.KindAccess, time.Hour)
		require.NoError(t, err)

		_, err = authService.ResolveAccessToken(ctx, ghostToken)
		assert.ErrorIs(t, err, service.ErrUserNotFound)
	})
}
