package flash

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	KindSuccess = "success"
	KindError   = "error"

	issuer     = "sheetodo-flash"
	pendingKey = "flash.pending"
)

// Message is a one-shot notice shown on the next rendered page
type Message struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

type claims struct {
	Messages []Message `json:"msgs"`
	jwt.RegisteredClaims
}

// Store keeps flash messages in an HS256-signed cookie
type Store struct {
	secret     []byte
	cookieName string
	ttl        time.Duration
	secure     bool
	now        func() time.Time
}

func NewStore(secret string, secure bool) *Store {
	return &Store{
		secret:     []byte(secret),
		cookieName: "flash",
		ttl:        5 * time.Minute,
		secure:     secure,
		now:        time.Now,
	}
}

// Add queues a message for the next request. Messages added during the
// same request accumulate in one cookie.
func (s *Store) Add(c *gin.Context, kind, text string) error {
	var pending []Message
	if v, ok := c.Get(pendingKey); ok {
		pending = v.([]Message)
	}
	pending = append(pending, Message{Kind: kind, Text: text})
	c.Set(pendingKey, pending)

	signed, err := s.sign(pending)
	if err != nil {
		return err
	}
	s.setCookie(c, signed, int(s.ttl.Seconds()))
	return nil
}

// Pop returns the messages carried by the request and clears the cookie.
// A missing, expired or tampered cookie yields no messages.
func (s *Store) Pop(c *gin.Context) []Message {
	raw, err := c.Cookie(s.cookieName)
	if err != nil || raw == "" {
		return nil
	}
	s.setCookie(c, "", -1)

	msgs, err := s.parse(raw)
	if err != nil {
		return nil
	}
	return msgs
}

func (s *Store) sign(msgs []Message) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims{
		Messages: msgs,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})
	return token.SignedString(s.secret)
}

func (s *Store) parse(raw string) ([]Message, error) {
	var cl claims
	token, err := jwt.ParseWithClaims(raw, &cl, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid flash token")
	}
	return cl.Messages, nil
}

func (s *Store) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.cookieName, value, maxAge, "/", "", s.secure, true)
}
