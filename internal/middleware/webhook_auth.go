package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// 上下文键
const (
	CtxShop    = "shop"     // 店铺域名
	CtxRawBody = "raw_body" // 原始请求体（签名校验后供处理器解析）
)

// WebhookConfig 回调签名校验配置
type WebhookConfig struct {
	Secret     string // 平台应用密钥
	SkipVerify bool   // 开发模式跳过校验（DEV_SKIP_HMAC）
}

// WebhookAuth 平台回调签名校验。
// 对原始请求体计算 HMAC-SHA256（base64），与 X-Shopify-Hmac-Sha256 常量时间比较；
// 校验失败在任何解析之前拒绝请求。店铺域名取自 X-Shopify-Shop-Domain。
func WebhookAuth(cfg WebhookConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawBody, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "读取请求体失败"})
			return
		}
		c.Set(CtxRawBody, rawBody)
		c.Set(CtxShop, c.GetHeader("X-Shopify-Shop-Domain"))

		if cfg.SkipVerify {
			log.Println("[Webhook] DEV_SKIP_HMAC=true，跳过签名校验（仅限开发环境）")
			c.Next()
			return
		}

		given := c.GetHeader("X-Shopify-Hmac-Sha256")
		if given == "" || !verifyHmac(cfg.Secret, rawBody, given) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "HMAC validation failed"})
			return
		}

		c.Next()
	}
}

// verifyHmac 常量时间比较签名
func verifyHmac(secret string, rawBody []byte, given string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	digest := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(digest), []byte(given))
}

// RawBody 取出中间件缓存的原始请求体
func RawBody(c *gin.Context) []byte {
	if v, ok := c.Get(CtxRawBody); ok {
		if b, ok := v.([]byte); ok {
			return b
		}
	}
	return nil
}

// ShopFromContext 取出当前请求的店铺域名
func ShopFromContext(c *gin.Context) string {
	return c.GetString(CtxShop)
}
