package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
)

// TransactionAttributes annotates the nrgin transaction with the request ID
// and caller, and reports handler errors. It is a no-op without New Relic.
func TransactionAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		txn := nrgin.Transaction(c)
		if txn == nil {
			return
		}

		if rid := GetRequestID(c); rid != "" {
			txn.AddAttribute("requestId", rid)
		}
		if userID := GetUserID(c); userID != "" {
			txn.AddAttribute("userId", userID)
		}

		// Record error if present.
		for _, err := range c.Errors {
			txn.NoticeError(err.Err)
		}
	}
}
