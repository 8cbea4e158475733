package utils

import (
	"bytes"
	"context"
	"errors"
	"log"
	"testing"
	"time"

	"ecoaware/backend/config"
	"ecoaware/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func TestJWTRoundTrip(t *testing.T) {
	cfg := &config.Config{JWTSecret: "s3cret", JWTTTL: time.Hour}
	user := models.User{Username: "alice", Role: models.RoleAdmin}
	user.ID = 7

	token, expiresAt, err := GenerateJWTToken(user, cfg)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := ParseToken(token, cfg)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, models.RoleAdmin, claims.Role)

	again, _, err := GenerateJWTToken(user, cfg)
	require.NoError(t, err)
	assert.NotEqual(t, token, again)
}

func TestParseTokenRejects(t *testing.T) {
	cfg := &config.Config{JWTSecret: "s3cret", JWTTTL: time.Hour}
	user := models.User{Username: "alice"}
	user.ID = 1

	_, err := ParseToken("garbage", cfg)
	assert.Error(t, err)

	expired := &config.Config{JWTSecret: "s3cret", JWTTTL: -time.Minute}
	token, _, err := GenerateJWTToken(user, expired)
	require.NoError(t, err)
	_, err = ParseToken(token, cfg)
	assert.Error(t, err)

	anonymous := models.User{Username: "ghost"}
	token, _, err = GenerateJWTToken(anonymous, cfg)
	require.NoError(t, err)
	_, err = ParseToken(token, cfg)
	assert.Error(t, err, "a token without a user id is useless")
}

func TestValidate(t *testing.T) {
	type input struct {
		Name  string `json:"name" validate:"required,min=3"`
		Email string `json:"email,omitempty" validate:"omitempty,email"`
		Age   int    `validate:"gte=0"`
	}

	assert.Nil(t, ValidateStruct(input{Name: "alice"}))

	fields := ValidateStruct(input{Name: "al", Email: "nope", Age: -1})
	assert.Equal(t, map[string]string{"name": "min", "email": "email", "Age": "gte"}, fields)

	err := Validate(input{})
	var fe FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "required", fe["name"])
}

func TestInitLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLogger(LoggerConfig{Format: "plain", Output: &buf})
	logger.Println("hello")
	assert.Contains(t, buf.String(), "[EcoAware] hello")
	assert.NotZero(t, logger.Flags()&log.Lmsgprefix)

	buf.Reset()
	logger = InitLogger(LoggerConfig{Output: &buf, EnableColors: true, Prefix: "[test] "})
	logger.Println("hi")
	assert.Contains(t, buf.String(), "\033[36m[test] \033[0m")
	assert.Contains(t, buf.String(), "utils_test.go")
}

func TestGormLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewGormLogger(log.New(&buf, "", 0), gormLogger.Warn)
	ctx := context.Background()

	l.Info(ctx, "ignored %d", 1)
	assert.Empty(t, buf.String())

	l.Warn(ctx, "careful %d", 2)
	assert.Contains(t, buf.String(), "[WARN] careful 2")

	buf.Reset()
	sql := func() (string, int64) { return "SELECT 1", 1 }
	l.Trace(ctx, time.Now(), sql, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String(), "record not found is not an error worth logging")

	l.Trace(ctx, time.Now(), sql, errors.New("disk full"))
	assert.Contains(t, buf.String(), "disk full")

	buf.Reset()
	l.Trace(ctx, time.Now().Add(-time.Second), sql, nil)
	assert.Contains(t, buf.String(), "[SLOW SQL]")

	buf.Reset()
	l.LogMode(gormLogger.Silent).Trace(ctx, time.Now(), sql, errors.New("boom"))
	assert.Empty(t, buf.String())
}

func TestOpenMemoryIsolated(t *testing.T) {
	a, err := OpenMemory()
	require.NoError(t, err)
	b, err := OpenMemory()
	require.NoError(t, err)

	require.NoError(t, a.Create(&models.User{Username: "alice", Email: "a@example.com", PasswordHash: "x"}).Error)

	var count int64
	b.Model(&models.User{}).Count(&count)
	assert.Zero(t, count)

	err = a.Create(&models.User{Username: "alice", Email: "b@example.com", PasswordHash: "x"}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestInitDBRejectsUnknownDriver(t *testing.T) {
	_, err := InitDB(&config.Config{DBDriver: "mongo"})
	assert.Error(t, err)
}

func TestInitDBSqliteFile(t *testing.T) {
	db, err := InitDB(&config.Config{DBDriver: "sqlite", DBPath: t.TempDir() + "/eco.db"})
	require.NoError(t, err)
	assert.True(t, db.Migrator().HasTable(&models.GameResult{}))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}
