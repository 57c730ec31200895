package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"

	"github.com/cmsops/optimove-export/pkg/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const workspaceCookie = "workspace"

// WorkspaceMiddleware associates every request with a workspace id via a
// signed cookie, issuing a new id on first contact. The workspace itself is
// held in memory only; losing the cookie or restarting the process starts
// the operator over.
func WorkspaceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := workspaceIDFromCookie(c)
		if id == "" {
			id = uuid.New().String()
			setWorkspaceCookie(c, id)
		}

		c.Set("workspace_id", id)
		c.Next()
	}
}

// GetWorkspaceID retrieves the workspace id from the request context.
func GetWorkspaceID(c *gin.Context) string {
	id, exists := c.Get("workspace_id")
	if !exists {
		return ""
	}
	if s, ok := id.(string); ok {
		return s
	}
	return ""
}

// workspaceIDFromCookie extracts and validates the workspace id from cookie
func workspaceIDFromCookie(c *gin.Context) string {
	cookie, err := c.Cookie(workspaceCookie)
	if err != nil {
		return ""
	}

	// Split cookie value (signature.id)
	parts := strings.Split(cookie, ".")
	if len(parts) != 2 {
		return ""
	}

	signature, id := parts[0], parts[1]
	if !verifySignature(id, signature) {
		return ""
	}

	if _, err := uuid.Parse(id); err != nil {
		return ""
	}

	return id
}

func setWorkspaceCookie(c *gin.Context, id string) {
	signature := createSignature(id)
	c.SetCookie(workspaceCookie, signature+"."+id, 86400, "/", "", false, true)
}

// createSignature creates HMAC signature for data
func createSignature(data string) string {
	h := hmac.New(sha256.New, []byte(config.AppConfig.Session.Secret))
	h.Write([]byte(data))
	return base64.URLEncoding.EncodeToString(h.Sum(nil))
}

// verifySignature verifies HMAC signature
func verifySignature(data, signature string) bool {
	expectedSignature := createSignature(data)
	return hmac.Equal([]byte(signature), []byte(expectedSignature))
}
