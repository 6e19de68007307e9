package service

import (
	"crypto/sha256"
	"encoding/hex"
)

const userGroupHashLen = 16

// UserGroupHash scopes storefront fragments and export prices to a
// customer group of a shop.
func UserGroupHash(shopKey, customerGroupID string) string {
	sum := sha256.Sum256([]byte(shopKey + ":" + customerGroupID))
	return hex.EncodeToString(sum[:])[:userGroupHashLen]
}
