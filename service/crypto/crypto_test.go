/*
 * @module service/crypto/crypto_test
 * @description 凭证加解密的单元测试
 * @architecture 单元测试
 * @documentReference ai_docs/source_connector_req.md
 * @stateFlow 设置密钥 -> 加密 -> 解密 -> 验证往返一致
 * @rules 覆盖密文格式、明文降级与非法密文
 * @dependencies testing, github.com/stretchr/testify/assert
 * @refs crypto.go
 */

package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncryptDecrypt_Roundtrip(t *testing.T) {
	t.Setenv("ENCRYPTION_KEY", "test-secret-key")

	secret := `{"api_key": "tk_1234567890"}`
	encrypted, err := Encrypt(secret)
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(encrypted, "enc:"))
	assert.NotContains(t, encrypted, "tk_1234567890")
	assert.Len(t, strings.Split(encrypted, ":"), 3)

	decrypted, err := Decrypt(encrypted)
	assert.NoError(t, err)
	assert.Equal(t, secret, decrypted)
}

func TestEncrypt_RandomIV(t *testing.T) {
	t.Setenv("ENCRYPTION_KEY", "test-secret-key")

	first, err := Encrypt("same input")
	assert.NoError(t, err)
	second, err := Encrypt("same input")
	assert.NoError(t, err)
	// IV随机，同一明文两次加密的密文不同
	assert.NotEqual(t, first, second)
}

func TestEncrypt_PlainFallbackWithoutKey(t *testing.T) {
	t.Setenv("ENCRYPTION_KEY", "")

	encrypted, err := Encrypt("open secret")
	assert.NoError(t, err)
	assert.Equal(t, "plain:open secret", encrypted)

	decrypted, err := Decrypt(encrypted)
	assert.NoError(t, err)
	assert.Equal(t, "open secret", decrypted)
}

func TestDecrypt_RequiresKeyForCiphertext(t *testing.T) {
	t.Setenv("ENCRYPTION_KEY", "test-secret-key")
	encrypted, err := Encrypt("payload")
	assert.NoError(t, err)

	t.Setenv("ENCRYPTION_KEY", "")
	_, err = Decrypt(encrypted)
	assert.Error(t, err)
}

func TestDecrypt_InvalidCiphertext(t *testing.T) {
	t.Setenv("ENCRYPTION_KEY", "test-secret-key")

	cases := []string{
		"enc:deadbeef",
		"enc:zz:zz",
		"other:aa:bb",
		"enc:" + strings.Repeat("00", 16) + ":abc",
	}
	for _, c := range cases {
		_, err := Decrypt(c)
		assert.Error(t, err, c)
	}
}
