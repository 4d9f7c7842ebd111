// Package api is the storefront's HTTP JSON interface.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tasty-canteen/config"
	"tasty-canteen/services"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	engine *gin.Engine
	addr   string
	log    *zap.Logger
}

func NewServer(cfg config.HTTPConfig, shop *services.Storefront, log *zap.Logger) *Server {
	log = log.Named("api")
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log), corsMiddleware(cfg.CORSOrigins))

	h := &handlers{shop: shop, log: log, taxPc: services.FormatPercent(shop.Checkout.TaxRate())}
	r.GET("/health", h.health)
	r.GET("/menu", h.menu)
	r.GET("/menu/:category", h.menuCategory)
	r.GET("/offers", h.offers)
	r.GET("/combos", h.combos)

	s := r.Group("/", sessionMiddleware(shop.Sessions), authMiddleware([]byte(cfg.JWTSecret)))
	s.GET("/cart", h.getCart)
	s.POST("/cart/items", h.addCartItem)
	s.PATCH("/cart/items/:id", h.updateCartItem)
	s.DELETE("/cart/items/:id", h.removeCartItem)
	s.DELETE("/cart", h.clearCart)
	s.GET("/checkout/quote", h.quote)
	s.POST("/auth/signout", h.signOut)

	a := s.Group("/", requireUser())
	a.POST("/checkout", h.checkout)
	a.GET("/orders", h.listOrders)
	a.GET("/orders/:id", h.getOrder)

	return &Server{engine: r, addr: cfg.Addr, log: log}
}

func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", s.addr))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
