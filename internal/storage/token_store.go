package storage

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrEmptyToken is returned when a stored token is blank
var ErrEmptyToken = errors.New("stored token is empty")

// TokenStore defines the interface for token storage operations
type TokenStore interface {
	GetToken(ctx context.Context, name string) (string, error)
	SetToken(ctx context.Context, name, token string) error
}

// s3API is the subset of the S3 client used by S3TokenStore
type s3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3TokenStore implements TokenStore using AWS S3
type S3TokenStore struct {
	client     s3API
	bucketName string
	encryptKey []byte // 32-byte key for AES-256
}

type tokenData struct {
	Token string `json:"token"`
}

// NewS3TokenStore creates a new S3TokenStore instance
func NewS3TokenStore(client s3API, bucketName string, encryptKey []byte) *S3TokenStore {
	return &S3TokenStore{
		client:     client,
		bucketName: bucketName,
		encryptKey: encryptKey,
	}
}

// LoadS3TokenStore builds an S3TokenStore from the default AWS credential chain
func LoadS3TokenStore(ctx context.Context, bucketName string, encryptKey []byte) (*S3TokenStore, error) {
	if len(encryptKey) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes, got %d", len(encryptKey))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewS3TokenStore(s3.NewFromConfig(cfg), bucketName, encryptKey), nil
}

// GetToken retrieves and decrypts the named token
func (s *S3TokenStore) GetToken(ctx context.Context, name string) (string, error) {
	key := s.getKey(name)

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get token from S3: %w", err)
	}
	defer result.Body.Close()

	var data tokenData
	if err := json.NewDecoder(result.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("failed to decode token data: %v", err)
	}

	// Decrypt the token
	decryptedToken, err := s.decrypt(data.Token)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt token: %w", err)
	}

	decryptedToken = strings.TrimSpace(decryptedToken)
	if decryptedToken == "" {
		return "", ErrEmptyToken
	}
	return decryptedToken, nil
}

// SetToken encrypts and stores the named token
func (s *S3TokenStore) SetToken(ctx context.Context, name, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}
	key := s.getKey(name)

	// Encrypt the token
	encryptedToken, err := s.encrypt(token)
	if err != nil {
		return fmt.Errorf("failed to encrypt token: %w", err)
	}

	data := tokenData{Token: encryptedToken}
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal token data: %v", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
		Body:   bytes.NewReader(jsonData),
	})
	if err != nil {
		return fmt.Errorf("failed to store token in S3: %w", err)
	}

	return nil
}

// encrypt encrypts the token using AES-GCM
func (s *S3TokenStore) encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(s.encryptKey)
	if err != nil {
		return "", err
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	// Generate a random nonce
	nonce := make([]byte, aesGCM.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	// Encrypt the data
	ciphertext := aesGCM.Seal(nonce, nonce, []byte(plaintext), nil)

	// Encode the result in base64
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// decrypt decrypts the token using AES-GCM
func (s *S3TokenStore) decrypt(encryptedText string) (string, error) {
	// Decode the base64 string
	ciphertext, err := base64.StdEncoding.DecodeString(encryptedText)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(s.encryptKey)
	if err != nil {
		return "", err
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	if len(ciphertext) < aesGCM.NonceSize() {
		return "", fmt.Errorf("ciphertext too short")
	}

	// Split nonce and ciphertext
	nonce := ciphertext[:aesGCM.NonceSize()]
	ciphertext = ciphertext[aesGCM.NonceSize():]

	// Decrypt the data
	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}

	return string(plaintext), nil
}

// getKey generates the S3 key for a named token
func (s *S3TokenStore) getKey(name string) string {
	return fmt.Sprintf("tokens/%s.json", name)
}
