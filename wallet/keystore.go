package wallet

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/pbkdf2"

	"github.com/kairolabs/kairochain/crypto"
)

// keystoreVersion identifies the on-disk envelope layout.
const keystoreVersion = 1

// pbkdf2Iters is the work factor for freshly written keystores. Load honours
// the iteration count recorded in the file so the factor can be raised
// without invalidating existing validator keys.
const pbkdf2Iters = 210_000

// kdfParams records how the encryption key was derived, so old keystores
// stay readable after the defaults change.
type kdfParams struct {
	Salt  string `json:"salt"`
	Iters int    `json:"iters"`
}

// keystoreFile is the envelope written to disk. Identity and Address are
// stored in the clear so an operator can tell which validator a key file
// belongs to without decrypting it.
type keystoreFile struct {
	Version    int       `json:"version"`
	Identity   string    `json:"identity"` // validator public key hex
	Address    string    `json:"address"`  // short address derived from Identity
	KDF        kdfParams `json:"kdf"`
	Nonce      string    `json:"nonce"`
	CipherText string    `json:"cipher_text"`
}

// Save encrypts the wallet's private key with password and writes the
// keystore envelope to path.
func Save(path, password string, w *Wallet) error {
	salt := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return err
	}
	key := deriveKey(password, salt, pbkdf2Iters)

	block, err := aes.NewCipher(key)
	if err != nil {
		return err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return err
	}
	cipherText := gcm.Seal(nil, nonce, w.PrivKey(), nil)

	ks := keystoreFile{
		Version:  keystoreVersion,
		Identity: w.PubKey().Hex(),
		Address:  w.Address(),
		KDF: kdfParams{
			Salt:  hex.EncodeToString(salt),
			Iters: pbkdf2Iters,
		},
		Nonce:      hex.EncodeToString(nonce),
		CipherText: hex.EncodeToString(cipherText),
	}
	data, err := json.MarshalIndent(ks, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// Load decrypts the keystore at path and rebuilds the wallet. The decrypted
// key must derive the identity recorded in the envelope; a mismatch means
// the file was tampered with or the envelope belongs to a different key.
func Load(path, password string) (*Wallet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ks keystoreFile
	if err := json.Unmarshal(data, &ks); err != nil {
		return nil, err
	}
	if ks.Version != keystoreVersion {
		return nil, fmt.Errorf("unsupported keystore version %d", ks.Version)
	}
	if ks.KDF.Iters <= 0 {
		return nil, errors.New("keystore missing kdf parameters")
	}
	salt, err := hex.DecodeString(ks.KDF.Salt)
	if err != nil {
		return nil, err
	}
	nonce, err := hex.DecodeString(ks.Nonce)
	if err != nil {
		return nil, err
	}
	cipherText, err := hex.DecodeString(ks.CipherText)
	if err != nil {
		return nil, err
	}

	key := deriveKey(password, salt, ks.KDF.Iters)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	plain, err := gcm.Open(nil, nonce, cipherText, nil)
	if err != nil {
		return nil, errors.New("keystore decryption failed (wrong password?)")
	}
	if len(plain) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("decrypted key must be %d bytes, got %d", ed25519.PrivateKeySize, len(plain))
	}

	w := New(crypto.PrivateKey(plain))
	if w.PubKey().Hex() != ks.Identity {
		return nil, errors.New("keystore identity does not match the decrypted key")
	}
	return w, nil
}

func deriveKey(password string, salt []byte, iters int) []byte {
	return pbkdf2.Key([]byte(password), salt, iters, 32, sha256.New)
}
