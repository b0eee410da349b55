package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmehra2102/marketplace-orders/pkg/apperr"
)

type ChatRole string

const (
	RoleBuyer  ChatRole = "buyer"
	RoleSeller ChatRole = "seller"
	RoleSystem ChatRole = "system"
)

func (r ChatRole) Valid() bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleSystem:
		return true
	}
	return false
}

type ChatMessage struct {
	Text      string    `json:"text"`
	SenderID  string    `json:"senderId"`
	Role      ChatRole  `json:"role"`
	Timestamp time.Time `json:"timestamp"`
}

func (m ChatMessage) Validate() error {
	v := &apperr.ValidationError{}
	if strings.TrimSpace(m.Text) == "" {
		v.Add("text", "must not be empty")
	}
	if m.SenderID == "" {
		v.Add("senderId", "must not be empty")
	}
	if !m.Role.Valid() {
		v.Add("role", fmt.Sprintf("unknown role %q", m.Role))
	}
	return v.Err()
}
