// mint-token opens an operator session in Redis and prints a signed
// operator token for it. Intended for local development and smoke tests;
// production deployments mint tokens from their own sign-in flow.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/credforge/passedit/internal"
	authjwt "github.com/credforge/passedit/jwt"
	"github.com/credforge/passedit/session"
	"github.com/credforge/passedit/web"
)

func main() {
	user := flag.String("user", "", "operator user ID")
	role := flag.String("role", "steward", "operator role")
	redisAddr := flag.String("redis", "localhost:6379", "redis address")
	prefix := flag.String("prefix", "pes", "session key prefix")
	ttl := flag.Duration("ttl", 30*time.Minute, "session and token lifetime")
	flag.Parse()

	if *user == "" {
		log.Fatal("-user is required")
	}

	key := os.Getenv("OPERATOR_SIGNING_KEY")
	if key == "" {
		log.Fatal("OPERATOR_SIGNING_KEY is required")
	}

	rdb := redis.NewClient(&redis.Options{Addr: *redisAddr})
	store := session.NewStore(rdb, *prefix)

	id, err := internal.NewSessionID()
	if err != nil {
		log.Fatalf("session id: %v", err)
	}

	now := time.Now()
	sess := &session.Session{
		SessionID: id.String(),
		UserID:    *user,
		Role:      *role,
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(*ttl).Unix(),
	}

	ctx := context.Background()
	if err := store.Save(ctx, sess, *ttl); err != nil {
		log.Fatalf("save session: %v", err)
	}

	tokens, err := authjwt.NewManager(authjwt.Config{
		TTL:           *ttl,
		SigningMethod: authjwt.MethodHS256,
		PrivateKey:    []byte(key),
		Issuer:        "passeditd",
	})
	if err != nil {
		log.Fatalf("token manager: %v", err)
	}

	signed, err := tokens.CreateOperator(*user, sess.SessionID, *role)
	if err != nil {
		log.Fatalf("sign token: %v", err)
	}

	fmt.Printf("session: %s\n", sess.SessionID)
	fmt.Printf("cookie:  %s=%s\n", web.OperatorCookie, signed)
}
