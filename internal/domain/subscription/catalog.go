package subscription

// FeatureKind classifies a catalog feature
type FeatureKind string

const (
	FeatureBoolean FeatureKind = "boolean"
	FeatureNumeric FeatureKind = "numeric"
	// FeatureModule is a boolean that also toggles a whole application module
	FeatureModule FeatureKind = "module"
)

// FeatureKey identifies a feature in the catalog
type FeatureKey string

// Numeric limit features
const (
	KeyMaxBranchesPerSchool FeatureKey = "maxBranchesPerSchool"
	KeyMaxCoursesPerSchool  FeatureKey = "maxCoursesPerSchool"
	KeyMaxBranchManagers    FeatureKey = "maxBranchManagers"
	KeyMaxCourseManagers    FeatureKey = "maxCourseManagers"
	KeyMaxStudents          FeatureKey = "maxStudents"
	KeyMaxTeachers          FeatureKey = "maxTeachers"
	KeyMaxStaff             FeatureKey = "maxStaff"
	KeyMaxStorageGB         FeatureKey = "maxStorageGB"
)

// Plain boolean features
const (
	KeyOnlinePayments   FeatureKey = "onlinePayments"
	KeyParentPortal     FeatureKey = "parentPortal"
	KeySMSNotifications FeatureKey = "smsNotifications"
	KeyAutoBackup       FeatureKey = "autoBackup"
)

// Module toggles
const (
	KeyModuleAttendance   FeatureKey = "attendance"
	KeyModuleExaminations FeatureKey = "examinations"
	KeyModuleMessaging    FeatureKey = "messaging"
	KeyModuleLibrary      FeatureKey = "library"
	KeyModuleTransport    FeatureKey = "transport"
	KeyModuleReporting    FeatureKey = "reporting"
)

// FeatureDefinition is one catalog entry. DefaultBool applies to boolean and
// module kinds, DefaultNum to numeric kinds.
type FeatureDefinition struct {
	Key         FeatureKey
	Kind        FeatureKind
	DefaultBool bool
	DefaultNum  float64
	Description string
}

// catalog is the static feature catalog. Unknown keys in package
// configuration are ignored; missing keys fall back to these defaults.
var catalog = []FeatureDefinition{
	{Key: KeyMaxBranchesPerSchool, Kind: FeatureNumeric, DefaultNum: 0, Description: "Maximum branches per school"},
	{Key: KeyMaxCoursesPerSchool, Kind: FeatureNumeric, DefaultNum: 0, Description: "Maximum courses per school"},
	{Key: KeyMaxBranchManagers, Kind: FeatureNumeric, DefaultNum: 0, Description: "Maximum branch managers"},
	{Key: KeyMaxCourseManagers, Kind: FeatureNumeric, DefaultNum: 0, Description: "Maximum course managers"},
	{Key: KeyMaxStudents, Kind: FeatureNumeric, DefaultNum: 0, Description: "Maximum active students"},
	{Key: KeyMaxTeachers, Kind: FeatureNumeric, DefaultNum: 0, Description: "Maximum active teachers"},
	{Key: KeyMaxStaff, Kind: FeatureNumeric, DefaultNum: 0, Description: "Maximum active staff"},
	{Key: KeyMaxStorageGB, Kind: FeatureNumeric, DefaultNum: 1, Description: "Storage allowance in GB"},

	{Key: KeyOnlinePayments, Kind: FeatureBoolean, DefaultBool: false, Description: "Online fee payments"},
	{Key: KeyParentPortal, Kind: FeatureBoolean, DefaultBool: false, Description: "Parent portal access"},
	{Key: KeySMSNotifications, Kind: FeatureBoolean, DefaultBool: false, Description: "SMS notifications"},
	{Key: KeyAutoBackup, Kind: FeatureBoolean, DefaultBool: false, Description: "Automatic backups"},

	{Key: KeyModuleAttendance, Kind: FeatureModule, DefaultBool: false, Description: "Attendance module"},
	{Key: KeyModuleExaminations, Kind: FeatureModule, DefaultBool: false, Description: "Examinations module"},
	{Key: KeyModuleMessaging, Kind: FeatureModule, DefaultBool: false, Description: "Messaging module"},
	{Key: KeyModuleLibrary, Kind: FeatureModule, DefaultBool: false, Description: "Library module"},
	{Key: KeyModuleTransport, Kind: FeatureModule, DefaultBool: false, Description: "Transport module"},
	{Key: KeyModuleReporting, Kind: FeatureModule, DefaultBool: false, Description: "Reporting module"},
}

// Catalog returns all feature definitions
func Catalog() []FeatureDefinition {
	out := make([]FeatureDefinition, len(catalog))
	copy(out, catalog)
	return out
}

// Definition looks up a catalog entry by key
func Definition(key FeatureKey) (FeatureDefinition, bool) {
	for _, def := range catalog {
		if def.Key == key {
			return def, true
		}
	}
	return FeatureDefinition{}, false
}

// BooleanKeys returns all boolean keys, module toggles included
func BooleanKeys() []FeatureKey {
	var keys []FeatureKey
	for _, def := range catalog {
		if def.Kind == FeatureBoolean || def.Kind == FeatureModule {
			keys = append(keys, def.Key)
		}
	}
	return keys
}

// NumericKeys returns all numeric keys
func NumericKeys() []FeatureKey {
	var keys []FeatureKey
	for _, def := range catalog {
		if def.Kind == FeatureNumeric {
			keys = append(keys, def.Key)
		}
	}
	return keys
}

// ModuleKeys returns the boolean keys flagged as module toggles
func ModuleKeys() []FeatureKey {
	var keys []FeatureKey
	for _, def := range catalog {
		if def.Kind == FeatureModule {
			keys = append(keys, def.Key)
		}
	}
	return keys
}

// IsValidFeatureKey checks if a feature key exists in the catalog
func IsValidFeatureKey(key FeatureKey) bool {
	_, ok := Definition(key)
	return ok
}
