package app

import (
	"strings"
	"time"

	"github.com/bibliomemory/bibliomemory-backend/internal/platform/logger"
	"github.com/bibliomemory/bibliomemory-backend/internal/utils"
)

type Config struct {
	Port            string
	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	RedisURL        string
	MaxUploadSize   int64
	PresignTTL      time.Duration
	AllowedOrigins  []string
}

func LoadConfig(log *logger.Logger) Config {
	port := utils.GetEnv("PORT", "8080", log)
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTLSeconds := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTLSeconds := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
	redisURL := utils.GetEnv("REDIS_URL", "redis://localhost:6379/0", log)
	maxUploadSize := utils.GetEnvAsInt64("MAX_UPLOAD_SIZE_BYTES", 50<<20, log)
	presignTTLSeconds := utils.GetEnvAsInt("PRESIGN_TTL_SECONDS", 900, log)

	var allowedOrigins []string
	if raw := utils.GetEnv("CORS_ALLOWED_ORIGINS", "", log); raw != "" {
		for _, origin := range strings.Split(raw, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				allowedOrigins = append(allowedOrigins, origin)
			}
		}
	}

	return Config{
		Port:            port,
		JWTSecretKey:    jwtSecretKey,
		AccessTokenTTL:  time.Duration(accessTokenTTLSeconds) * time.Second,
		RefreshTokenTTL: time.Duration(refreshTokenTTLSeconds) * time.Second,
		RedisURL:        redisURL,
		MaxUploadSize:   maxUploadSize,
		PresignTTL:      time.Duration(presignTTLSeconds) * time.Second,
		AllowedOrigins:  allowedOrigins,
	}
}
