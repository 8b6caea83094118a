package http

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var allowedImageExt = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
	"webp": true,
}

type AdminHandler struct {
	catalog   catalog.Editor
	sessions  *SessionManager
	username  string
	password  string
	uploadDir string
	timeout   time.Duration
	log       *zap.Logger
	now       func() time.Time
}

func NewAdminHandler(c catalog.Editor, sessions *SessionManager, username, password, uploadDir string, timeout time.Duration, log *zap.Logger) *AdminHandler {
	return &AdminHandler{
		catalog:   c,
		sessions:  sessions,
		username:  username,
		password:  password,
		uploadDir: uploadDir,
		timeout:   timeout,
		log:       log,
		now:       time.Now,
	}
}

type LoginRequestDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AdminHandler) credentialsMatch(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(h.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(h.password)) == 1
	return userOK && passOK
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequestDTO
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_request", "invalid form body")
			return
		}
		req.Username = r.PostForm.Get("username")
		req.Password = r.PostForm.Get("password")
	}

	if !h.credentialsMatch(req.Username, req.Password) {
		logger.WithContext(r.Context(), h.log).Warn("admin login failed", zap.String("username", req.Username))
		respondRedirect(w, http.StatusUnauthorized, "invalid_credentials", "invalid username or password", "/login")
		return
	}

	if err := h.sessions.SetAdmin(w, r, true); err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "redirect": "/admin/products"})
}

func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.SetAdmin(w, r, false); err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "redirect": "/login"})
}

// List returns every product, newest first.
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.catalog.ListProducts(ctx, catalog.AllCategories)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID > products[j].ID })
	respondJSON(w, http.StatusOK, toProductsResponse(products))
}

func (h *AdminHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := r.ParseMultipartForm(32 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid form body")
		return
	}

	price, err := decimal.NewFromString(strings.TrimSpace(r.FormValue("price")))
	if err != nil {
		price = decimal.Zero
	}

	image, err := h.saveUpload(r)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	if image == "" {
		image = r.FormValue("image_url")
	}

	p, err := h.catalog.CreateProduct(ctx, &domain.Product{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		Price:       price,
		Image:       image,
	})
	if errors.Is(err, catalog.ErrNegativePrice) {
		respondError(w, http.StatusBadRequest, "invalid_price", err.Error())
		return
	}
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	logger.WithContext(ctx, h.log).Info("product created", zap.Int64("product_id", p.ID), zap.String("image", p.Image))
	respondJSON(w, http.StatusCreated, toProductResponse(p))
}

func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product id must be a positive integer")
		return
	}

	if err := h.catalog.DeleteProduct(ctx, id); err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// saveUpload stores image_file when it has an allowed extension and returns
// its public path. An empty path means no usable file was sent.
func (h *AdminHandler) saveUpload(r *http.Request) (string, error) {
	file, header, err := r.FormFile("image_file")
	if err != nil {
		return "", nil
	}
	defer file.Close()

	name := sanitizeFilename(header.Filename)
	if !allowedFile(name) {
		return "", nil
	}
	name = fmt.Sprintf("%d_%s", h.now().Unix(), name)

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	dst, err := os.Create(filepath.Join(h.uploadDir, name))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("write upload file: %w", err)
	}
	return "images/" + name, nil
}

func allowedFile(name string) bool {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return false
	}
	return allowedImageExt[strings.ToLower(name[i+1:])]
}

// sanitizeFilename keeps the base name and drops every character outside a
// conservative ASCII set.
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = filepath.Base(name)

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "._")
}
