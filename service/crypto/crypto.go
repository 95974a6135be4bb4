/*
 * @module service/crypto
 * @description 连接器凭证加解密，scrypt派生密钥 + AES-256-CBC
 * @architecture 工具层 - 提供敏感配置的可逆加密能力
 * @documentReference ai_docs/source_connector_req.md
 * @stateFlow 凭证保存时加密 -> 连接器调用时解密
 * @rules 未配置ENCRYPTION_KEY时降级为plain:明文标记，仅限开发环境
 * @dependencies golang.org/x/crypto/scrypt, crypto/aes
 * @refs service/connector
 */

package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/scrypt"
)

const (
	plainPrefix = "plain:"
	encPrefix   = "enc"
)

// deriveKey 从ENCRYPTION_KEY派生256位密钥
func deriveKey(secret string) ([]byte, error) {
	return scrypt.Key([]byte(secret), []byte("salt"), 16384, 8, 1, 32)
}

// Encrypt 加密敏感数据（API凭证等），输出 enc:<iv:hex>:<密文:hex>
// 未配置ENCRYPTION_KEY时返回带明文标记的原文
func Encrypt(text string) (string, error) {
	secret := os.Getenv("ENCRYPTION_KEY")
	if secret == "" {
		return plainPrefix + text, nil
	}

	key, err := deriveKey(secret)
	if err != nil {
		return "", fmt.Errorf("密钥派生失败: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", err
	}

	padded := pkcs7Pad([]byte(text), aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return fmt.Sprintf("%s:%s:%s", encPrefix, hex.EncodeToString(iv), hex.EncodeToString(ciphertext)), nil
}

// Decrypt 解密敏感数据，兼容plain:明文标记
func Decrypt(encrypted string) (string, error) {
	if strings.HasPrefix(encrypted, plainPrefix) {
		return strings.TrimPrefix(encrypted, plainPrefix), nil
	}

	secret := os.Getenv("ENCRYPTION_KEY")
	if secret == "" {
		return "", errors.New("解密需要配置ENCRYPTION_KEY")
	}

	parts := strings.Split(encrypted, ":")
	if len(parts) != 3 || parts[0] != encPrefix {
		return "", errors.New("密文格式不合法")
	}

	iv, err := hex.DecodeString(parts[1])
	if err != nil || len(iv) != aes.BlockSize {
		return "", errors.New("密文IV不合法")
	}

	ciphertext, err := hex.DecodeString(parts[2])
	if err != nil || len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", errors.New("密文长度不合法")
	}

	key, err := deriveKey(secret)
	if err != nil {
		return "", fmt.Errorf("密钥派生失败: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	return string(pkcs7Unpad(plaintext)), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(padding)}, padding)...)
}

func pkcs7Unpad(data []byte) []byte {
	if len(data) == 0 {
		return data
	}
	padding := int(data[len(data)-1])
	if padding == 0 || padding > len(data) {
		return data
	}
	return data[:len(data)-padding]
}
