package config

import "github.com/kelseyhightower/envconfig"

// StorageConfig configures the GridFS image store.
type StorageConfig struct {
    Enabled        bool   `envconfig:"IMAGE_STORE_ENABLED" default:"true"`
    MongoURI       string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
    Database       string `envconfig:"MONGO_DB" default:"nyumbalink"`
    Bucket         string `envconfig:"IMAGE_BUCKET" default:"property_images"`
    MaxUploadBytes int64  `envconfig:"UPLOAD_MAX_BYTES" default:"5242880"`
}

// LoadStorageConfig reads the image store settings.
func LoadStorageConfig() (StorageConfig, error) {
    var c StorageConfig
    err := envconfig.Process("", &c)
    return c, err
}
