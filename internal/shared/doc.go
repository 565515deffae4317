// Package shared defines the collaborator interfaces used across relpick
// services: filesystem access, shell execution, repository management, and
// status reporting.
package shared
