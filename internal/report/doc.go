// Package report renders footprint reports for people and tools: a plain
// text layout for terminals, JSON in the same shape the API serves, and
// Markdown for sharing.
package report
