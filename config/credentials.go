package config

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"

	"ss-scraper/storage"
)

// chatIDPrefix marks the credentials columns holding messaging destinations.
const chatIDPrefix = "chat_id"

// Credentials holds the secrets read from the credentials CSV.
type Credentials struct {
	DBName   string `validate:"required"`
	User     string `validate:"required"`
	Password string
	Host     string `validate:"required,hostname_rfc1123|ip"`
	Port     string `validate:"required,numeric"`
	BotToken string `validate:"required"`

	// ChatIDs maps every chat_id* column to its value.
	ChatIDs map[string]string
}

var postgresFields = []string{"DBName", "User", "Password", "Host", "Port"}

// LoadCredentials reads the header row and the first data row of the CSV
// file at path.
func LoadCredentials(path string) (*Credentials, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("credentials: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("credentials: read header: %w", err)
	}
	row, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("credentials: read first row: %w", err)
	}

	values := make(map[string]string, len(header))
	for i, col := range header {
		col = strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))
		if i < len(row) {
			values[col] = strings.TrimSpace(row[i])
		}
	}

	c := &Credentials{
		DBName:   values["db_name"],
		User:     values["user"],
		Password: values["password"],
		Host:     values["host"],
		Port:     values["port"],
		BotToken: values["bot_token"],
		ChatIDs:  make(map[string]string),
	}
	for col, v := range values {
		if strings.HasPrefix(col, chatIDPrefix) && v != "" {
			c.ChatIDs[col] = v
		}
	}
	return c, nil
}

// Validate checks the fields a run needs: database fields only when
// PostgreSQL is used and the bot token only when messages are sent.
func (c *Credentials) Validate(usePostgres, messaging bool) error {
	var skip []string
	if !usePostgres {
		skip = append(skip, postgresFields...)
	}
	if !messaging {
		skip = append(skip, "BotToken")
	}

	v := validator.New()
	var err error
	if len(skip) > 0 {
		err = v.StructExcept(c, skip...)
	} else {
		err = v.Struct(c)
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, len(verrs))
		for i, fe := range verrs {
			fields[i] = fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag())
		}
		return fmt.Errorf("credentials: invalid fields: %s", strings.Join(fields, ", "))
	}
	return err
}

// ChatID returns the destination stored under column.
func (c *Credentials) ChatID(column string) (string, error) {
	id, ok := c.ChatIDs[column]
	if !ok {
		return "", fmt.Errorf("credentials: no %q column", column)
	}
	return id, nil
}

// Postgres returns the connection settings held by the credentials.
func (c *Credentials) Postgres(sslMode string) storage.PostgresConfig {
	return storage.PostgresConfig{
		Host:     c.Host,
		Port:     c.Port,
		User:     c.User,
		Password: c.Password,
		DBName:   c.DBName,
		SSLMode:  sslMode,
	}
}
