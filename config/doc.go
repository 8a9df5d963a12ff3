// Package config reads the librarian configuration from the environment (and .env files) and
// opens the journal database connections it describes.
package config
