// Package domain contains the core entity types shared across the
// application. It has no dependencies on other internal packages.
package domain
