package metadata

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// DataItemForTableDelta returns the deterministic logical path token for one
// snapshot/delta of a table partition: data/table/{objectId}/snap-{S}/delta-{D}-x{hex}.
// The trailing hex suffix disambiguates concurrent writers racing to create
// the same (snap,delta) pair; it carries no semantic meaning on its own.
func DataItemForTableDelta(objectID string, snapIndex, deltaIndex int64) (string, error) {
	suffix, err := randomHexSuffix()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("data/table/%s/snap-%d/delta-%d-x%s", objectID, snapIndex, deltaIndex, suffix), nil
}

// DataItemForFileVersion returns the deterministic logical path token for a
// FILE object's version: file/{objectId}/version-{V}.
func DataItemForFileVersion(objectID string, objectVersion int64) string {
	return fmt.Sprintf("file/%s/version-%d", objectID, objectVersion)
}

func randomHexSuffix() (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("metadata: generating dataItem suffix: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
