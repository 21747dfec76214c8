package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	passedit "github.com/credforge/passedit"
	"github.com/credforge/passedit/jwt"
)

// OperatorCookie is the cookie carrying the signed operator token.
const OperatorCookie = "passedit_operator"

const operatorContextKey = "passedit.operator"

// OperatorTokens wraps the token manager used to authenticate operators.
type OperatorTokens struct {
	Manager *jwt.Manager
}

// requireOperator authenticates the request from the operator cookie.
// Missing, expired, or forged tokens abort with a generic 401; the
// response never says which.
func (h *Handler) requireOperator() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(OperatorCookie)
		if err != nil {
			c.HTML(http.StatusUnauthorized, "message.html", gin.H{"message": "Sign in to continue."})
			c.Abort()
			return
		}

		claims, err := h.Tokens.Manager.ParseOperator(raw)
		if err != nil {
			c.HTML(http.StatusUnauthorized, "message.html", gin.H{"message": "Sign in to continue."})
			c.Abort()
			return
		}

		c.Set(operatorContextKey, passedit.Operator{
			UserID:    claims.UID,
			Role:      claims.Role,
			SessionID: claims.SID,
		})
		c.Next()
	}
}

func operatorFrom(c *gin.Context) passedit.Operator {
	if v, ok := c.Get(operatorContextKey); ok {
		if op, ok := v.(passedit.Operator); ok {
			return op
		}
	}
	return passedit.Operator{}
}
