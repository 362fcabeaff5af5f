package globals

import (
	"context"
	"os"
)

var JwtSecret = []byte("roadsafe_dev_secret")

func init() {
	if s := os.Getenv("JWT_SECRET"); s != "" {
		JwtSecret = []byte(s)
	}
}

// Context keys
type ContextKey string

const UserIDKey ContextKey = "userId"
const UserKey ContextKey = "user"

var Ctx = context.Background()
