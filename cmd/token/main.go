// Command token mints an organizer JWT signed with JWT_SECRET, for local use and scripts.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"

	"eventseating/config"
	"eventseating/internal/adapters/auth"
	"eventseating/internal/domain"
)

func main() {
	subject := flag.String("sub", "", "organizer user id (default: random UUID)")
	email := flag.String("email", "", "organizer email")
	roles := flag.String("roles", domain.RoleOrganizer, "comma separated roles")
	ttl := flag.Duration("ttl", 0, "token lifetime (default: TOKEN_EXPIRY)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *subject == "" {
		*subject = uuid.NewString()
	}
	expiry := cfg.TokenExpiry
	if *ttl > 0 {
		expiry = *ttl
	}

	var roleList []string
	for _, r := range strings.Split(*roles, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roleList = append(roleList, r)
		}
	}

	token, err := auth.NewJWTIssuer(cfg.JWTSecret).Issue(*subject, *email, roleList, expiry)
	if err != nil {
		log.Fatalf("issue token: %v", err)
	}
	fmt.Fprintf(os.Stderr, "subject: %s\n", *subject)
	fmt.Println(token)
}
