// Command token prints a signed bearer token for local testing of the
// authenticated routes.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ariefcatur/restaurant-orders/internal/authz"
	"github.com/ariefcatur/restaurant-orders/internal/config"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	role := flag.String("role", "staff", "superadmin | business_admin | staff")
	business := flag.Int64("business", 0, "business id (business_admin)")
	branch := flag.Int64("branch", 0, "branch id (staff)")
	sub := flag.String("sub", "dev", "subject")
	ttl := flag.Duration("ttl", 12*time.Hour, "token lifetime")
	flag.Parse()

	r, err := authz.ParseRole(*role)
	if err != nil || r == authz.RoleAnonymous {
		log.Fatalf("unknown role %q", *role)
	}
	c := authz.Context{Subject: *sub, Role: r}
	if *business > 0 {
		c.BusinessID = business
	}
	if *branch > 0 {
		c.BranchID = branch
	}

	secret := config.Load().JWTSecret
	if secret == "" {
		log.Fatal("JWT_SECRET is not set")
	}
	tokens := authz.NewTokens(secret)
	tok, err := tokens.Issue(c, *ttl)
	if err != nil {
		log.Fatalf("issue: %v", err)
	}
	// refuse to print a token the API would reject
	if _, err := tokens.Parse(tok); err != nil {
		log.Fatalf("token would be rejected: %v", err)
	}
	fmt.Fprintln(os.Stdout, tok)
}
