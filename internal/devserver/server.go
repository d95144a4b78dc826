package devserver

import (
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"banbds/internal/logging"
)

// Envelope statuses.
const (
	statusSuccess      = "Success"
	statusError        = "Error"
	statusNotProcess   = "Not Process"
	statusUnauthorized = "Unauthorized"
	statusImageFormat  = "ImageFormat"
	statusImageTooBig  = "ImageToBig"
)

// Rejection messages; clients tell device from user rejections by them.
const (
	MsgDeviceInvalid = "Device token invalid"
	MsgUserInvalid   = "User token invalid"
)

const (
	deviceHeader    = "x-banbds-device-token"
	requestIDHeader = "X-Request-ID"

	localDevice = "device"
	localUser   = "user"
)

// Config tunes the backend.
type Config struct {
	Secret        string
	DeviceTTL     time.Duration
	UserTTL       time.Duration
	OTPInterval   time.Duration
	MaxImageBytes int
	// RenewGrace keeps the token replaced by a renewal valid for a while,
	// so clients sharing a device id that renew concurrently both succeed.
	RenewGrace time.Duration
	// DemoPhone and DemoPassword seed a login.
	DemoPhone    string
	DemoPassword string
	// Now overrides the clock in tests.
	Now func() time.Time
}

func (c *Config) withDefaults() {
	if c.Secret == "" {
		c.Secret = uuid.NewString()
	}
	if c.DeviceTTL <= 0 {
		c.DeviceTTL = time.Hour
	}
	if c.UserTTL <= 0 {
		c.UserTTL = 24 * time.Hour
	}
	if c.RenewGrace <= 0 {
		c.RenewGrace = 30 * time.Second
	}
	if c.OTPInterval <= 0 {
		c.OTPInterval = time.Minute
	}
	if c.MaxImageBytes <= 0 {
		c.MaxImageBytes = 2 << 20
	}
	if c.DemoPhone == "" {
		c.DemoPhone = "0900000000"
	}
	if c.DemoPassword == "" {
		c.DemoPassword = "secret"
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}

// Server is the fiber application plus its state.
type Server struct {
	cfg    Config
	state  *memoryState
	tokens *signer
	log    *slog.Logger
	app    *fiber.App
}

// New builds a server with seeded demo content.
func New(cfg Config, log *slog.Logger) *Server {
	cfg.withDefaults()
	s := &Server{
		cfg:    cfg,
		state:  newMemoryState(),
		tokens: &signer{secret: []byte(cfg.Secret), now: cfg.Now},
		log:    logging.OrDiscard(log),
	}
	s.state.seed(cfg.DemoPhone, cfg.DemoPassword)

	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             cfg.MaxImageBytes + 1<<20,
		ErrorHandler:          s.errorHandler,
	})
	s.app.Use(s.requestID, s.accessLog)

	s.app.Post("/device/register", s.register)
	s.app.Post("/device/renew", s.renew)

	s.app.Post("/user/login", s.deviceAuth, s.login)
	s.app.Post("/user/otp", s.deviceAuth, s.otp)
	s.app.Get("/user/profile", s.deviceAuth, s.userAuth, s.profile)
	s.app.Put("/user/profile", s.deviceAuth, s.userAuth, s.updateProfile)

	s.app.Get("/post/mine", s.deviceAuth, s.userAuth, s.myPosts)
	s.app.Post("/post/image", s.deviceAuth, s.userAuth, s.uploadImage)
	s.app.Get("/post/:id", s.deviceAuth, s.getPost)
	s.app.Get("/news", s.deviceAuth, s.listNews)
	s.app.Get("/project", s.deviceAuth, s.listProjects)
	return s
}

// App exposes the fiber application for Listen and tests.
func (s *Server) App() *fiber.App { return s.app }

func success(c *fiber.Ctx, data any) error {
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": statusSuccess, "data": data})
}

func notProcess(c *fiber.Ctx, msg string) error {
	return c.Status(http.StatusUnprocessableEntity).JSON(fiber.Map{"status": statusNotProcess, "message": msg})
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"status": statusUnauthorized, "message": msg})
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := http.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= http.StatusInternalServerError {
		s.log.Error("request failed", slog.String("path", c.Path()), slog.Any("error", err))
	}
	return c.Status(code).JSON(fiber.Map{"status": statusError, "error": err.Error()})
}

func (s *Server) requestID(c *fiber.Ctx) error {
	id := c.Get(requestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(requestIDHeader, id)
	c.Locals(requestIDHeader, id)
	return c.Next()
}

func (s *Server) accessLog(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	s.log.Info("request",
		slog.String("method", c.Method()),
		slog.String("path", c.Path()),
		slog.Int("status", c.Response().StatusCode()),
		slog.Duration("duration", time.Since(start)),
		slog.Any("request_id", c.Locals(requestIDHeader)),
	)
	return err
}

func (s *Server) deviceAuth(c *fiber.Ctx) error {
	raw := c.Get(deviceHeader)
	if raw == "" {
		return unauthorized(c, MsgDeviceInvalid)
	}
	cl, err := s.tokens.verify(kindDevice, raw)
	if err != nil {
		return unauthorized(c, MsgDeviceInvalid)
	}
	d, ok := s.state.device(cl.Subject)
	if !ok || !d.accepts(cl.Version, s.cfg.Now()) {
		return unauthorized(c, MsgDeviceInvalid)
	}
	c.Locals(localDevice, d.ID)
	return c.Next()
}

func (s *Server) userAuth(c *fiber.Ctx) error {
	authz := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return unauthorized(c, MsgUserInvalid)
	}
	cl, err := s.tokens.verify(kindUser, strings.TrimSpace(authz[len("Bearer "):]))
	if err != nil {
		return unauthorized(c, MsgUserInvalid)
	}
	if _, ok := s.state.userByID(cl.Subject); !ok {
		return unauthorized(c, MsgUserInvalid)
	}
	c.Locals(localUser, cl.Subject)
	return c.Next()
}

type registerRequest struct {
	Brand    string `json:"brand"`
	Model    string `json:"model"`
	DeviceID string `json:"deviceId"`
	OS       string `json:"os"`
	MACID    string `json:"macId"`
}

func (s *Server) register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.DeviceID == "" && req.MACID == "" {
		return fiber.NewError(http.StatusBadRequest, "deviceId or macId required")
	}
	d := device{ID: uuid.NewString(), Fingerprint: req}
	s.state.addDevice(d)

	tok, err := s.tokens.issue(kindDevice, d.ID, d.Version, s.cfg.DeviceTTL)
	if err != nil {
		return err
	}
	s.log.Info("device registered", slog.String("device_id", d.ID), slog.String("brand", req.Brand))
	return success(c, fiber.Map{"deviceID": d.ID, "token": tok})
}

func (s *Server) renew(c *fiber.Ctx) error {
	var req struct {
		DeviceID string `json:"deviceID"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	ver, ok := s.state.bumpDevice(req.DeviceID, s.cfg.Now(), s.cfg.RenewGrace)
	if !ok {
		return unauthorized(c, "Device not registered")
	}
	tok, err := s.tokens.issue(kindDevice, req.DeviceID, ver, s.cfg.DeviceTTL)
	if err != nil {
		return err
	}
	return success(c, fiber.Map{"token": tok})
}

func (s *Server) login(c *fiber.Ctx) error {
	var req struct {
		Phone    string `json:"phone"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	u, ok := s.state.userByPhone(req.Phone)
	if !ok || u.Password != req.Password {
		return notProcess(c, "Wrong phone or password")
	}
	tok, err := s.tokens.issue(kindUser, u.ID, 0, s.cfg.UserTTL)
	if err != nil {
		return err
	}
	return success(c, fiber.Map{"token": tok, "user": u})
}

func (s *Server) otp(c *fiber.Ctx) error {
	var req struct {
		Phone string `json:"phone"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if !validPhone(req.Phone) {
		return notProcess(c, "Failed")
	}
	if !s.state.allowOTP(req.Phone, s.cfg.Now(), s.cfg.OTPInterval) {
		return notProcess(c, "Renew")
	}
	s.log.Info("otp sent", slog.String("phone", req.Phone))
	return success(c, nil)
}

func validPhone(p string) bool {
	if len(p) < 9 || len(p) > 12 {
		return false
	}
	for _, r := range p {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (s *Server) profile(c *fiber.Ctx) error {
	u, ok := s.state.userByID(c.Locals(localUser).(string))
	if !ok {
		return unauthorized(c, MsgUserInvalid)
	}
	return success(c, u)
}

func (s *Server) updateProfile(c *fiber.Ctx) error {
	var upd struct {
		FullName string `json:"fullName"`
		Email    string `json:"email"`
		Address  string `json:"address"`
		Avatar   string `json:"avatar"`
	}
	if err := c.BodyParser(&upd); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if upd.Email != "" && !strings.Contains(upd.Email, "@") {
		return notProcess(c, "Invalid email")
	}
	u, ok := s.state.updateUser(c.Locals(localUser).(string), func(u *user) {
		if upd.FullName != "" {
			u.FullName = upd.FullName
		}
		if upd.Email != "" {
			u.Email = upd.Email
		}
		if upd.Address != "" {
			u.Address = upd.Address
		}
		if upd.Avatar != "" {
			u.Avatar = upd.Avatar
		}
	})
	if !ok {
		return unauthorized(c, MsgUserInvalid)
	}
	return success(c, u)
}

func pageParams(c *fiber.Ctx) (int, int) {
	page, size := c.QueryInt("page", 1), c.QueryInt("pageSize", 10)
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 10
	}
	return page, size
}

func paged[T any](c *fiber.Ctx, items []T) error {
	page, size := pageParams(c)
	return success(c, fiber.Map{
		"items":    window(items, page, size),
		"page":     page,
		"pageSize": size,
		"total":    len(items),
	})
}

func (s *Server) myPosts(c *fiber.Ctx) error {
	return paged(c, s.state.postsOf(c.Locals(localUser).(string)))
}

func (s *Server) getPost(c *fiber.Ctx) error {
	p, ok := s.state.post(c.Params("id"))
	if !ok {
		return success(c, nil)
	}
	return success(c, p)
}

func (s *Server) listNews(c *fiber.Ctx) error {
	s.state.mu.RLock()
	items := append([]article(nil), s.state.news...)
	s.state.mu.RUnlock()
	return paged(c, items)
}

func (s *Server) listProjects(c *fiber.Ctx) error {
	s.state.mu.RLock()
	items := append([]project(nil), s.state.projects...)
	s.state.mu.RUnlock()
	return paged(c, items)
}

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

func (s *Server) uploadImage(c *fiber.Ctx) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "image field required")
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !imageExts[ext] {
		return c.Status(http.StatusUnsupportedMediaType).JSON(fiber.Map{"status": statusImageFormat})
	}
	if fh.Size > int64(s.cfg.MaxImageBytes) {
		return c.Status(http.StatusRequestEntityTooLarge).JSON(fiber.Map{"status": statusImageTooBig})
	}
	n := s.state.nextImage()
	return success(c, fiber.Map{"url": "/images/" + strconv.Itoa(n) + ext})
}
