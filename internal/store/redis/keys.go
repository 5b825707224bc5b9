package redis

const (
	// KeyPrefixCard is the prefix for card keys
	KeyPrefixCard = "scanvault:card:"
	// KeyPrefixFolder is the prefix for folder keys
	KeyPrefixFolder = "scanvault:folder:"
	// KeyAllCards is the key for the set of all card IDs
	KeyAllCards = "scanvault:cards:all"
	// KeyAllFolders is the key for the set of all folder IDs
	KeyAllFolders = "scanvault:folders:all"
	// KeyRecognitionToken holds the runtime recognition token
	KeyRecognitionToken = "scanvault:settings:recognition_token"
)

// CardKey returns the Redis key for a card by ID
func CardKey(id string) string {
	return KeyPrefixCard + id
}

// FolderKey returns the Redis key for a folder by ID
func FolderKey(id string) string {
	return KeyPrefixFolder + id
}

// FolderCardsKey returns the key for the set of card IDs assigned to a folder
func FolderCardsKey(id string) string {
	return KeyPrefixFolder + id + ":cards"
}

// AllCardsKey returns the key for the set of all card IDs
func AllCardsKey() string {
	return KeyAllCards
}

// AllFoldersKey returns the key for the set of all folder IDs
func AllFoldersKey() string {
	return KeyAllFolders
}
