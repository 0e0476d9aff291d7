package config

type Config struct {
	Debug   bool    `mapstructure:"debug"`
	Server  Server  `mapstructure:"server"`
	Auth    Auth    `mapstructure:"auth"`
	Catalog Catalog `mapstructure:"catalog"`
	Media   Media   `mapstructure:"media"`
}

type Server struct {
	Address   string       `mapstructure:"address" validate:"required,hostname|ip"`
	Port      int          `mapstructure:"port" validate:"required,min=1,max=65535"`
	PublicUrl string       `mapstructure:"public_url" validate:"required,url"`
	Limits    ServerLimits `mapstructure:"limits"`
}

type ServerLimits struct {
	MaxMultipartMem uint `mapstructure:"max_multipart_mem" validate:"required"`
	MaxFileSize     uint `mapstructure:"max_file_size" validate:"required"`
}

// Auth controls the admin gate on catalog writes. When Enforce is false the
// login endpoint still works but POST/DELETE /videos accept any caller.
type Auth struct {
	Enforce    bool   `mapstructure:"enforce"`
	AdminToken string `mapstructure:"admin_token" validate:"required_if=Enforce true"`
}

type Catalog struct {
	Strategy string              `mapstructure:"strategy" validate:"required,oneof=sql d1"`
	Sql      *SQLCatalogStrategy `mapstructure:"sql" validate:"required_if=Strategy sql"`
	D1       *D1CatalogStrategy  `mapstructure:"d1" validate:"required_if=Strategy d1"`
}

type SQLCatalogStrategy struct {
	Driver      string  `mapstructure:"driver" validate:"required,oneof=sqlite postgres mysql"`
	DSN         string  `mapstructure:"dsn" validate:"required"`
	TablePrefix *string `mapstructure:"table_prefix" validate:"omitempty,identifier"`
}

type D1CatalogStrategy struct {
	AccountID   string  `mapstructure:"account_id" validate:"required"`
	DatabaseID  string  `mapstructure:"database_id" validate:"required"`
	APIToken    string  `mapstructure:"api_token" validate:"required"`
	Endpoint    string  `mapstructure:"endpoint" validate:"omitempty,url"`
	TablePrefix *string `mapstructure:"table_prefix" validate:"omitempty,identifier"`
}

type Media struct {
	Strategy   string                   `mapstructure:"strategy" validate:"required,oneof=filesystem s3 none"`
	Filesystem *FilesystemMediaStrategy `mapstructure:"filesystem" validate:"required_if=Strategy filesystem"`
	S3         *S3MediaStrategy         `mapstructure:"s3" validate:"required_if=Strategy s3"`
}

type FilesystemMediaStrategy struct {
	Path      string `mapstructure:"path" validate:"required,abspath"`
	PublicUrl string `mapstructure:"public_url" validate:"required,url"`
}

type S3MediaStrategy struct {
	AccessKeyId string `mapstructure:"access_key_id" validate:"required"`
	SecretKeyId string `mapstructure:"secret_key_id" validate:"required"`
	Region      string `mapstructure:"region" validate:"required"`
	Bucket      string `mapstructure:"bucket" validate:"required"`
	Endpoint    string `mapstructure:"endpoint" validate:"omitempty"`
	PublicUrl   string `mapstructure:"public_url" validate:"required,url"`
}
