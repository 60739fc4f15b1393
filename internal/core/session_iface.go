package core

import "github.com/google/uuid"

// ConnID identifies one live transport connection. A reconnecting client
// gets a new ConnID; its participant id stays the same.
type ConnID string

func NewConnID() ConnID { return ConnID(uuid.NewString()) }
