package service

import (
	"strings"

	"github.com/google/uuid"
)

func newDocID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
