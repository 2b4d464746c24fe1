package diagnostics

// Variable names read from the deployment environment.
const (
	VarProjectID        = "FIREBASE_PROJECT_ID"
	VarProjectIDAlt     = "GOOGLE_CLOUD_PROJECT"
	VarClientEmail      = "FIREBASE_CLIENT_EMAIL"
	VarPrivateKey       = "FIREBASE_PRIVATE_KEY"
	VarPrivateKeyBase64 = "FIREBASE_PRIVATE_KEY_BASE64"
	VarStorageBucket    = "FIREBASE_STORAGE_BUCKET"
	VarStorageBucketAlt = "GOOGLE_CLOUD_STORAGE_BUCKET"
)

// RequiredVariables is reported as found/missing but does not gate the environment check.
var RequiredVariables = []string{
	VarProjectID,
	VarClientEmail,
	VarPrivateKey,
	VarStorageBucket,
}

// KnownVariables lists every name a snapshot is built from.
var KnownVariables = []string{
	VarProjectID,
	VarProjectIDAlt,
	VarClientEmail,
	VarPrivateKey,
	VarPrivateKeyBase64,
	VarStorageBucket,
	VarStorageBucketAlt,
}

// ConfigSnapshot is an immutable view of configuration variables.
// A variable that is set to "" is present.
type ConfigSnapshot struct {
	vars map[string]string
}

// NewConfigSnapshot copies vars so later mutation of the map is not observed.
func NewConfigSnapshot(vars map[string]string) ConfigSnapshot {
	cp := make(map[string]string, len(vars))
	for k, v := range vars {
		cp[k] = v
	}
	return ConfigSnapshot{vars: cp}
}

// SnapshotFrom reads the known variables through lookup (os.LookupEnv in production).
func SnapshotFrom(lookup func(string) (string, bool)) ConfigSnapshot {
	vars := make(map[string]string, len(KnownVariables))
	for _, name := range KnownVariables {
		if v, ok := lookup(name); ok {
			vars[name] = v
		}
	}
	return ConfigSnapshot{vars: vars}
}

func (s ConfigSnapshot) Lookup(name string) (string, bool) {
	v, ok := s.vars[name]
	return v, ok
}

func (s ConfigSnapshot) Has(name string) bool {
	_, ok := s.vars[name]
	return ok
}

// first returns the value of the first present name.
func (s ConfigSnapshot) first(names ...string) (string, bool) {
	for _, n := range names {
		if v, ok := s.vars[n]; ok {
			return v, true
		}
	}
	return "", false
}

// ProjectID prefers FIREBASE_PROJECT_ID over GOOGLE_CLOUD_PROJECT.
func (s ConfigSnapshot) ProjectID() (string, bool) {
	return s.first(VarProjectID, VarProjectIDAlt)
}

func (s ConfigSnapshot) ClientEmail() (string, bool) {
	return s.Lookup(VarClientEmail)
}

// StorageBucket prefers FIREBASE_STORAGE_BUCKET over GOOGLE_CLOUD_STORAGE_BUCKET.
func (s ConfigSnapshot) StorageBucket() (string, bool) {
	return s.first(VarStorageBucket, VarStorageBucketAlt)
}

// HasPrivateKey reports whether either key channel is set.
func (s ConfigSnapshot) HasPrivateKey() bool {
	return s.Has(VarPrivateKey) || s.Has(VarPrivateKeyBase64)
}
