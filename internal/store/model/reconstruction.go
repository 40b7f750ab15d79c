package model

import (
	"encoding/json"
	"time"
)

// Reconstruction is one field of the shared metadata document, keyed by Name.
type Reconstruction struct {
	Name      string `gorm:"primaryKey;type:VARCHAR(255)"`
	Week      string `gorm:"index"`
	Author    string `gorm:"index"`
	Prompt    string
	Status    string `gorm:"not null;index"`
	Pose      string `gorm:"not null"`
	Gripped   bool   `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ReconstructionList []Reconstruction

func (r Reconstruction) String() string {
	val, _ := json.Marshal(r)
	return string(val)
}

// Document indexes the list by name, the shape the metadata document is consumed in.
func (l ReconstructionList) Document() map[string]Reconstruction {
	doc := make(map[string]Reconstruction, len(l))
	for _, r := range l {
		doc[r.Name] = r
	}
	return doc
}
