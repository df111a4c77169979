package models

import "time"

// Document is one uploaded file moving through the processing pipeline.
// Optional fields are nil until the matching transition has run once.
type Document struct {
	ID                     string    `json:"document_id" firestore:"-" badgerhold:"key"`
	Filename               string    `json:"filename" firestore:"filename"`
	StoredPath             string    `json:"file_path" firestore:"file_path"`
	ExtractedText          string    `json:"extracted_text" firestore:"extracted_text"`
	IsLegal                *bool     `json:"is_legal,omitempty" firestore:"is_legal,omitempty"`
	Summary                *string   `json:"summary,omitempty" firestore:"summary,omitempty"`
	TranslatedText         *string   `json:"translated_text,omitempty" firestore:"translated_text,omitempty"`
	GeneratedDocumentPath  *string   `json:"generated_document,omitempty" firestore:"generated_document,omitempty"`
	TranslatedDocumentPath *string   `json:"translated_document,omitempty" firestore:"translated_document,omitempty"`
	CreatedAt              time.Time `json:"created_at" firestore:"created_at"`
	UpdatedAt              time.Time `json:"updated_at" firestore:"updated_at"`
}

// Patch carries the fields a transition sets. Nil entries leave the stored
// value untouched, so a field never reverts to unset.
type Patch struct {
	IsLegal                *bool
	Summary                *string
	TranslatedText         *string
	GeneratedDocumentPath  *string
	TranslatedDocumentPath *string
}

// IsEmpty reports whether the patch would change nothing.
func (p Patch) IsEmpty() bool {
	return p.IsLegal == nil && p.Summary == nil && p.TranslatedText == nil &&
		p.GeneratedDocumentPath == nil && p.TranslatedDocumentPath == nil
}

// Apply copies the set fields of p onto doc and bumps UpdatedAt.
func (p Patch) Apply(doc *Document, now time.Time) {
	if p.IsLegal != nil {
		v := *p.IsLegal
		doc.IsLegal = &v
	}
	if p.Summary != nil {
		v := *p.Summary
		doc.Summary = &v
	}
	if p.TranslatedText != nil {
		v := *p.TranslatedText
		doc.TranslatedText = &v
	}
	if p.GeneratedDocumentPath != nil {
		v := *p.GeneratedDocumentPath
		doc.GeneratedDocumentPath = &v
	}
	if p.TranslatedDocumentPath != nil {
		v := *p.TranslatedDocumentPath
		doc.TranslatedDocumentPath = &v
	}
	doc.UpdatedAt = now
}

// Columns lists the set fields by their persisted names, in a fixed order.
func (p Patch) Columns() []Column {
	var cols []Column
	if p.IsLegal != nil {
		cols = append(cols, Column{Name: "is_legal", Value: *p.IsLegal})
	}
	if p.Summary != nil {
		cols = append(cols, Column{Name: "summary", Value: *p.Summary})
	}
	if p.TranslatedText != nil {
		cols = append(cols, Column{Name: "translated_text", Value: *p.TranslatedText})
	}
	if p.GeneratedDocumentPath != nil {
		cols = append(cols, Column{Name: "generated_document", Value: *p.GeneratedDocumentPath})
	}
	if p.TranslatedDocumentPath != nil {
		cols = append(cols, Column{Name: "translated_document", Value: *p.TranslatedDocumentPath})
	}
	return cols
}

// Column is one persisted field of a patch.
type Column struct {
	Name  string
	Value any
}

// Bool and String return pointers for building patches inline.
func Bool(v bool) *bool       { return &v }
func String(v string) *string { return &v }
