// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package clip defines the immutable feed entry shared by the client and the catalog server.
package clip

import (
	"encoding/json"
	"errors"
	"strings"
)

var (
	ErrMissingTitle   = errors.New("clip: title is required")
	ErrMissingPlayURL = errors.New("clip: play_url is required")
)

// Creator is the author metadata shown on a clip card.
type Creator struct {
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
	Handle string `json:"handle,omitempty" yaml:"handle,omitempty"`
	Avatar string `json:"avatar,omitempty" yaml:"avatar,omitempty"`
}

// Clip is one feed entry. The title doubles as the stable identifier.
type Clip struct {
	Title       string  `json:"title" yaml:"title"`
	Cover       string  `json:"cover,omitempty" yaml:"cover,omitempty"`
	PlayURL     string  `json:"play_url" yaml:"play_url"`
	Creator     Creator `json:"creator" yaml:"creator,omitempty"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
}

// ID returns the observation key of the clip.
func (c Clip) ID() string {
	return c.Title
}

// Validate checks the fields the player cannot work without.
func (c Clip) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return ErrMissingTitle
	}
	if strings.TrimSpace(c.PlayURL) == "" {
		return ErrMissingPlayURL
	}
	return nil
}

// UnmarshalJSON accepts both the nested creator object and the flat
// creator_name / creator_avatar / creator_handle fields some feeds emit.
func (c *Clip) UnmarshalJSON(data []byte) error {
	type plain Clip
	var aux struct {
		plain
		CreatorName   string `json:"creator_name"`
		CreatorHandle string `json:"creator_handle"`
		CreatorAvatar string `json:"creator_avatar"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*c = Clip(aux.plain)
	if c.Creator.Name == "" {
		c.Creator.Name = aux.CreatorName
	}
	if c.Creator.Handle == "" {
		c.Creator.Handle = aux.CreatorHandle
	}
	if c.Creator.Avatar == "" {
		c.Creator.Avatar = aux.CreatorAvatar
	}
	return nil
}

// Index returns the position of id in clips, or -1.
func Index(clips []Clip, id string) int {
	for i := range clips {
		if clips[i].ID() == id {
			return i
		}
	}
	return -1
}
