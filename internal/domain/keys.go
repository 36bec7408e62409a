// Package domain holds shared domain constants and errors.
package domain

// KeyPrefix namespaces every key the service writes.
const KeyPrefix = "notedex:"

// ResourceCollection is the logical name of the catalog record set.
const ResourceCollection = "resources"
