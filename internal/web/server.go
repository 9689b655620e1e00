package web

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/billedhq/billed/internal/bills"
	"github.com/billedhq/billed/internal/navigation"
	"github.com/billedhq/billed/internal/newbill"
	"github.com/billedhq/billed/internal/session"
	"github.com/billedhq/billed/internal/store"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Config holds web server configuration.
type Config struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	DefaultPct   int
}

// Server is the routing and rendering glue around the two controllers.
// It implements the collaborator contracts the controllers depend on:
// Navigator as redirects, Alerter as a flash message and Modal as the
// receipt overlay. It carries no business logic of its own.
type Server struct {
	cfg    Config
	store  store.Store
	user   *session.User
	logger *zap.Logger

	engine *gin.Engine
	srv    *http.Server

	mu       sync.Mutex
	creation *newbill.Controller // current new-bill instance, one per form render
	nav      navSink             // navigation requested by the creation controller
	flash    string
	overlay  string // receipt URL shown in the modal overlay
}

// navSink implements the Navigator contract for a controller that
// outlives a single request: the controller records the target route
// and the handler serving the current request performs the redirect.
type navSink struct {
	mu   sync.Mutex
	path string
}

func (n *navSink) navigate(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.path = path
}

func (n *navSink) take() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	path := n.path
	n.path = ""
	return path
}

// NewServer creates the web server and registers its routes.
func NewServer(cfg Config, st store.Store, user *session.User, logger *zap.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		store:  st,
		user:   user,
		logger: logger,
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, routeURL(navigation.RouteBills))
	})
	engine.GET("/employee/bills", s.handleBillsPage)
	engine.GET("/employee/bills/receipt", s.handleReceiptOverlay)
	engine.GET("/employee/bill/new", s.handleNewBillPage)
	engine.POST("/employee/bill/new/file", s.handleFileSelection)
	engine.POST("/employee/bill/new", s.handleSubmit)

	s.engine = engine
	return s
}

// routeURL maps the view route enumeration onto served URLs.
func routeURL(route string) string {
	switch route {
	case navigation.RouteBills:
		return "/employee/bills"
	case navigation.RouteNewBill:
		return "/employee/bill/new"
	default:
		return "/"
	}
}

// navigator returns a Navigator that redirects the given request.
func (s *Server) navigator(c *gin.Context) navigation.Navigator {
	return func(path string) {
		c.Redirect(http.StatusSeeOther, routeURL(path))
	}
}

// Alert stores a flash message shown on the next rendered page.
func (s *Server) Alert(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flash = message
}

// ShowImage records the receipt URL for the overlay. Re-showing the
// same image just keeps the overlay open.
func (s *Server) ShowImage(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overlay = url
}

func (s *Server) takeFlash() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := s.flash
	s.flash = ""
	return msg
}

func (s *Server) takeOverlay() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	url := s.overlay
	s.overlay = ""
	return url
}

// listController builds a bill-list controller bound to this request.
func (s *Server) listController(c *gin.Context) *bills.Controller {
	return bills.New(bills.Config{
		Store:      s.store,
		OnNavigate: s.navigator(c),
		User:       s.user,
		Modal:      s,
	}, s.logger)
}

// creationController returns the live new-bill instance, creating one
// when the form has not been rendered yet. The instance spans requests,
// so its Navigator is the sink rather than a request-bound redirect.
func (s *Server) creationController(fresh bool) *newbill.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fresh || s.creation == nil || s.creation.State() == newbill.StateSubmitted {
		s.creation = newbill.New(newbill.Config{
			Store:      s.store,
			OnNavigate: s.nav.navigate,
			User:       s.user,
			Alerter:    s,
			DefaultPct: s.cfg.DefaultPct,
		}, s.logger)
	}
	return s.creation
}

func (s *Server) handleBillsPage(c *gin.Context) {
	ctrl := s.listController(c)
	records, err := ctrl.GetBills(c.Request.Context())
	if err != nil {
		s.logger.Error("Failed to load bills", zap.Error(err))
		c.String(http.StatusBadGateway, "Erreur")
		return
	}

	bills.SortAntiChrono(records)
	renderPage(c, billsPageTmpl, gin.H{
		"User":    s.user,
		"Bills":   records,
		"Flash":   s.takeFlash(),
		"Overlay": s.takeOverlay(),
	})
}

func (s *Server) handleReceiptOverlay(c *gin.Context) {
	ctrl := s.listController(c)
	ctrl.HandleClickIconEye(c.Query("url"))
	c.Redirect(http.StatusFound, routeURL(navigation.RouteBills))
}

func (s *Server) handleNewBillPage(c *gin.Context) {
	// Each render starts a fresh creation instance.
	ctrl := s.creationController(true)
	_, _, fileName := ctrl.Attachment()
	renderPage(c, newBillPageTmpl, gin.H{
		"User":     s.user,
		"Flash":    s.takeFlash(),
		"FileName": fileName,
	})
}

func (s *Server) handleFileSelection(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		s.logger.Warn("No file in selection request", zap.Error(err))
		c.Redirect(http.StatusSeeOther, routeURL(navigation.RouteNewBill))
		return
	}

	ctrl := s.creationController(false)
	err = ctrl.HandleChangeFile(c.Request.Context(), &formFile{header: header})
	if err != nil && err != newbill.ErrUnsupportedFileType {
		s.logger.Error("Receipt upload failed", zap.Error(err))
	}
	c.Redirect(http.StatusSeeOther, routeURL(navigation.RouteNewBill))
}

func (s *Server) handleSubmit(c *gin.Context) {
	ctrl := s.creationController(false)
	form := newbill.Form{
		Type:       c.PostForm("expense-type"),
		Name:       c.PostForm("expense-name"),
		Amount:     c.PostForm("amount"),
		Date:       c.PostForm("datepicker"),
		VAT:        c.PostForm("vat"),
		Pct:        c.PostForm("pct"),
		Commentary: c.PostForm("commentary"),
	}

	if err := ctrl.HandleSubmit(c.Request.Context(), form); err != nil {
		// Persist failure blocks leaving the view.
		s.logger.Error("Bill submission failed", zap.Error(err))
		s.Alert("L'envoi de la note de frais a échoué, veuillez réessayer.")
		c.Redirect(http.StatusSeeOther, routeURL(navigation.RouteNewBill))
		return
	}

	if target := s.nav.take(); target != "" {
		c.Redirect(http.StatusSeeOther, routeURL(target))
		return
	}
	// Required fields missing: stay on the form.
	c.Redirect(http.StatusSeeOther, routeURL(navigation.RouteNewBill))
}

// Run starts the server and blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:      s.engine,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Web server listening", zap.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	}
}

// Engine exposes the router, used by tests.
func (s *Server) Engine() *gin.Engine { return s.engine }

// formFile adapts a multipart upload to the controller's FileInput.
// Reset is a no-op here: the browser clears its own picker when the
// form is re-rendered without a held file.
type formFile struct {
	header *multipart.FileHeader
}

func (f *formFile) Name() string { return filepath.Base(f.header.Filename) }

func (f *formFile) Open() (io.ReadCloser, error) { return f.header.Open() }

func (f *formFile) Reset() {}

func renderPage(c *gin.Context, tmpl *template.Template, data gin.H) {
	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(c.Writer, data); err != nil {
		_ = c.Error(err)
	}
}
