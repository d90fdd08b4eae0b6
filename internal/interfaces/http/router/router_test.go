package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// menuRegistrar mimics a handler package registering its routes.
type menuRegistrar struct{}

func (menuRegistrar) RegisterRoutes(rg *gin.RouterGroup) {
	menu := rg.Group("/menu")
	menu.GET("/items", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"items": []string{"margherita", "diavola"}})
	})
	menu.POST("/items", func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
}

type giftCardRegistrar struct{}

func (giftCardRegistrar) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/gift-cards/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id")})
	})
}

func get(router http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestRouter_MountsUnderVersionPrefix(t *testing.T) {
	engine := gin.New()
	NewRouter(engine).Register(menuRegistrar{}).Setup()

	assert.Equal(t, http.StatusOK, get(engine, "/api/v1/menu/items").Code)
	assert.Equal(t, http.StatusNotFound, get(engine, "/menu/items").Code,
		"routes must not exist outside the version prefix")
}

func TestRouter_CustomAPIVersion(t *testing.T) {
	engine := gin.New()
	NewRouter(engine, WithAPIVersion("v2")).Register(menuRegistrar{}).Setup()

	assert.Equal(t, http.StatusOK, get(engine, "/api/v2/menu/items").Code)
	assert.Equal(t, http.StatusNotFound, get(engine, "/api/v1/menu/items").Code)
}

func TestRouter_MultipleRegistrars(t *testing.T) {
	engine := gin.New()
	NewRouter(engine).
		Register(menuRegistrar{}).
		Register(giftCardRegistrar{}).
		Setup()

	assert.Equal(t, http.StatusOK, get(engine, "/api/v1/menu/items").Code)
	assert.Equal(t, http.StatusOK, get(engine, "/api/v1/gift-cards/gc-5").Code)
}

func TestRouter_GroupMiddlewareRunsBeforeRoutes(t *testing.T) {
	engine := gin.New()

	var order []string
	mw := func(name string) gin.HandlerFunc {
		return func(c *gin.Context) {
			order = append(order, name)
			c.Next()
		}
	}

	NewRouter(engine).
		Use(mw("tenant"), mw("auth")).
		Register(menuRegistrar{}).
		Setup()

	assert.Equal(t, http.StatusOK, get(engine, "/api/v1/menu/items").Code)
	assert.Equal(t, []string{"tenant", "auth"}, order)
}

func TestRouter_MiddlewareCanAbort(t *testing.T) {
	engine := gin.New()
	NewRouter(engine).
		Use(func(c *gin.Context) {
			c.AbortWithStatus(http.StatusTeapot)
		}).
		Register(menuRegistrar{}).
		Setup()

	assert.Equal(t, http.StatusTeapot, get(engine, "/api/v1/menu/items").Code)
}
