package main

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	passedit "github.com/credforge/passedit"
	"github.com/credforge/passedit/directory"
	authjwt "github.com/credforge/passedit/jwt"
	"github.com/credforge/passedit/web"
)

type config struct {
	ListenAddr      string        `env:"LISTEN_ADDR" envDefault:":8080"`
	RedisAddr       string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	SessionPrefix   string        `env:"SESSION_PREFIX" envDefault:"pes"`
	DirectoryPrefix string        `env:"DIRECTORY_PREFIX" envDefault:"ped"`
	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	OperatorKey     string        `env:"OPERATOR_SIGNING_KEY,required"`
	OperatorTTL     time.Duration `env:"OPERATOR_TOKEN_TTL" envDefault:"1h"`
	GinMode         string        `env:"GIN_MODE" envDefault:"release"`
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("parse env: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	dir := directory.NewRedisDirectory(rdb, cfg.DirectoryPrefix)

	engineCfg := passedit.DefaultConfig()
	engineCfg.Token.RedisPrefix = cfg.SessionPrefix
	engineCfg.Token.SessionTTL = cfg.SessionTTL

	engine, err := passedit.New().
		WithConfig(engineCfg).
		WithRedis(rdb).
		WithDirectory(dir).
		WithPermissions([]string{passedit.CapabilityEditPassword}).
		WithRoles(map[string][]string{
			"steward": {passedit.CapabilityEditPassword},
			"clerk":   {},
		}).
		Build()
	if err != nil {
		log.Fatalf("build engine: %v", err)
	}

	tokens, err := authjwt.NewManager(authjwt.Config{
		TTL:           cfg.OperatorTTL,
		SigningMethod: authjwt.MethodHS256,
		PrivateKey:    []byte(cfg.OperatorKey),
		Issuer:        "passeditd",
	})
	if err != nil {
		log.Fatalf("token manager: %v", err)
	}

	gin.SetMode(cfg.GinMode)
	r := gin.Default()

	h := &web.Handler{
		Engine: engine,
		Tokens: &web.OperatorTokens{Manager: tokens},
	}
	h.Register(r)

	log.Printf("passeditd listening on %s", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("serve: %v", err)
	}
}
