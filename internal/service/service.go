package service

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"gitlab.com/dirk.krummacker/contact-form-service/internal/model"
	"gitlab.com/dirk.krummacker/contact-form-service/internal/store"
	api "gitlab.com/dirk.krummacker/contact-form-service/pkg/model"
)

// errInvalidBody is reported when a submission cannot be parsed as its
// declared content type.
var errInvalidBody = errors.New("invalid request body")

// endpoints is the capability listing served at the root path.
var endpoints = map[string]string{
	"POST /submit-contact": "Submit a contact form",
	"GET /contacts":        "Get all contacts (for admin)",
	"GET /contacts/:id":    "Get a single contact",
	"GET /health":          "Health check",
}

// Service is the HTTP surface of the contact form API. It holds no state of
// its own besides the store gateway, so requests are handled independently.
type Service struct {
	store  store.Gateway
	router *gin.Engine
	now    func() time.Time
}

// New builds the service on top of the given store gateway and registers all
// endpoints. With requestLogging disabled no access log is written.
func New(gateway store.Gateway, requestLogging bool) *Service {
	s := &Service{
		store: gateway,
		now:   time.Now,
	}
	s.router = s.setupHttpRouter(requestLogging)
	return s
}

// setupHttpRouter initializes the REST API router and registers all endpoints.
func (s *Service) setupHttpRouter(requestLogging bool) *gin.Engine {
	router := gin.New()
	router.Use(recovery(), requestID())
	if requestLogging {
		router.Use(accessLog())
	}
	router.GET("/", s.index)
	router.GET("/health", s.health)
	router.POST("/submit-contact", s.submitContact)
	router.GET("/contacts", s.findContacts)
	router.GET("/contacts/:id", s.findContactByID)
	router.NoRoute(routeNotFound)
	return router
}

// Handler returns the router wrapped in a CORS policy that admits every
// origin.
func (s *Service) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	})
	return c.Handler(s.router)
}

// index responds with a short description of the API.
//
//	> curl http://localhost:3000/
func (s *Service) index(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, api.Index{
		Success:   true,
		Message:   "Contact Form API is running!",
		Endpoints: endpoints,
	})
}

// health reports that the process is alive and whether the store connection
// is usable. It never fails and never touches the store.
//
//	> curl http://localhost:3000/health
func (s *Service) health(c *gin.Context) {
	database := store.Disconnected.String()
	if s.store.State() == store.Connected {
		database = store.Connected.String()
	}
	c.IndentedJSON(http.StatusOK, api.Health{
		Status:    "OK",
		Timestamp: s.now().UTC().Format(api.TimestampLayout),
		Database:  database,
	})
}

// submitContact validates the submitted form and saves it as a new contact.
// It responds with the id, name and date of the saved contact.
//
// Missing body fields count as empty, and so does an empty body. A body that
// cannot be parsed as its content type is answered with BAD REQUEST.
//
// Example REST API call:
//
//	> curl http://localhost:3000/submit-contact --request "POST" --include --header "Content-Type: application/json" --data '{"name": "Ann", "email": "ann@example.com", "subject": "Hi", "message": "Hello"}'
func (s *Service) submitContact(c *gin.Context) {
	var req api.SubmitRequest
	if err := c.ShouldBind(&req); err != nil && !errors.Is(err, io.EOF) {
		fail(c, errors.Join(errInvalidBody, err), "")
		return
	}

	draft, err := model.NewDraft(req.Name, req.Email, req.Subject, req.Message)
	if err != nil {
		fail(c, err, "")
		return
	}

	if s.store.State() != store.Connected {
		fail(c, store.ErrStoreUnavailable, "")
		return
	}

	contact, err := s.store.Create(c.Request.Context(), draft)
	if err != nil {
		fail(c, err, "Failed to save message. Please try again later.")
		return
	}

	c.IndentedJSON(http.StatusCreated, api.Submitted{
		Success: true,
		Message: "Message saved successfully",
		Data: api.SubmittedContact{
			Id:   contact.Id,
			Name: contact.Name,
			Date: api.Timestamp{Time: contact.Date},
		},
	})
}

// findContacts responds with all contacts, most recent first.
//
//	> curl http://localhost:3000/contacts
func (s *Service) findContacts(c *gin.Context) {
	if s.store.State() != store.Connected {
		fail(c, store.ErrStoreUnavailable, "")
		return
	}

	contacts, err := s.store.ListAll(c.Request.Context())
	if err != nil {
		fail(c, err, "Failed to fetch contacts")
		return
	}

	data := make([]api.Contact, 0, len(contacts))
	for _, contact := range contacts {
		data = append(data, toAPI(contact))
	}
	c.IndentedJSON(http.StatusOK, api.ContactList{
		Success: true,
		Count:   len(data),
		Data:    data,
	})
}

// findContactByID locates the contact whose id matches the id parameter of
// the request URL. Ids the store cannot address are answered like unknown
// ids, with NOT FOUND.
//
//	> curl http://localhost:3000/contacts/65f1c0ffee0000000000beef
func (s *Service) findContactByID(c *gin.Context) {
	if s.store.State() != store.Connected {
		fail(c, store.ErrStoreUnavailable, "")
		return
	}

	contact, err := s.store.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err, "Failed to fetch contact")
		return
	}

	c.IndentedJSON(http.StatusOK, api.ContactResult{
		Success: true,
		Data:    toAPI(contact),
	})
}

func routeNotFound(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusNotFound, api.Failure{
		Success: false,
		Message: "Route not found",
	})
}

func toAPI(contact model.Contact) api.Contact {
	return api.Contact{
		Id:      contact.Id,
		Name:    contact.Name,
		Email:   contact.Email,
		Subject: contact.Subject,
		Message: contact.Message,
		Date:    api.Timestamp{Time: contact.Date},
	}
}
