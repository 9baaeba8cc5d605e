package normalize

// Canonical keys. ClientRaw, CaseRaw and ServeRaw emit these, so a rendered record
// normalizes back to itself.
const (
	KeyID          = "id"
	KeyClientID    = "clientId"
	KeyCaseID      = "caseId"
	KeyName        = "name"
	KeyEmail       = "email"
	KeyPhone       = "phone"
	KeyAddress     = "address"
	KeyCaseNumber  = "caseNumber"
	KeyCaseName    = "caseName"
	KeyCourtName   = "courtName"
	KeyPlaintiff   = "plaintiff"
	KeyDefendant   = "defendant"
	KeyServeeName  = "serveeName"
	KeyHomeAddress = "homeAddress"
	KeyWorkAddress = "workAddress"
	KeyStatus      = "status"
	KeyTimestamp   = "timestamp"
	KeyCreatedAt   = "createdAt"
	KeyUpdatedAt   = "updatedAt"
	KeyNotes       = "notes"
	KeyDescription = "description"
	KeyServiceAddr = "serviceAddress"
	KeyImageURL    = "imageUrl"
	KeyPhysical    = "physicalDescription"
	KeyLatitude    = "latitude"
	KeyLongitude   = "longitude"
	KeyAccuracy    = "accuracy"
	KeyCoordinates = "coordinates"
)

// alias lists the source keys accepted for one canonical key, per naming convention.
// Order matters: the first key holding a non-empty value wins.
type alias struct {
	app       []string
	persisted []string
}

// aliasTable maps canonical key -> accepted source keys
type aliasTable map[string]alias

var clientAliases = aliasTable{
	KeyID:        {app: []string{"id", "clientId"}, persisted: []string{"$id", "_id", "client_id"}},
	KeyName:      {app: []string{"name", "clientName", "fullName"}, persisted: []string{"client_name", "full_name"}},
	KeyEmail:     {app: []string{"email"}, persisted: []string{"email_address"}},
	KeyPhone:     {app: []string{"phone", "phoneNumber"}, persisted: []string{"phone_number"}},
	KeyAddress:   {app: []string{"address", "clientAddress"}, persisted: []string{"client_address", "street_address"}},
	KeyCreatedAt: {app: []string{"createdAt"}, persisted: []string{"$createdAt", "created_at"}},
	KeyUpdatedAt: {app: []string{"updatedAt"}, persisted: []string{"$updatedAt", "updated_at"}},
}

var caseAliases = aliasTable{
	KeyID:          {app: []string{"id", "caseId"}, persisted: []string{"$id", "_id", "case_id"}},
	KeyClientID:    {app: []string{"clientId"}, persisted: []string{"client_id", "client"}},
	KeyCaseNumber:  {app: []string{"caseNumber", "number"}, persisted: []string{"case_number"}},
	KeyCaseName:    {app: []string{"caseName", "title"}, persisted: []string{"case_name"}},
	KeyCourtName:   {app: []string{"courtName", "court"}, persisted: []string{"court_name"}},
	KeyPlaintiff:   {app: []string{"plaintiff", "plaintiffName"}, persisted: []string{"plaintiff_name"}},
	KeyDefendant:   {app: []string{"defendant", "defendantName"}, persisted: []string{"defendant_name"}},
	KeyServeeName:  {app: []string{"serveeName", "personEntityBeingServed", "personToServe"}, persisted: []string{"person_entity_being_served", "servee_name", "person_to_serve"}},
	KeyHomeAddress: {app: []string{"homeAddress"}, persisted: []string{"home_address"}},
	KeyWorkAddress: {app: []string{"workAddress"}, persisted: []string{"work_address"}},
	KeyStatus:      {app: []string{"status"}, persisted: []string{"case_status"}},
	KeyCreatedAt:   {app: []string{"createdAt"}, persisted: []string{"$createdAt", "created_at"}},
	KeyUpdatedAt:   {app: []string{"updatedAt"}, persisted: []string{"$updatedAt", "updated_at"}},
}

var serveAliases = aliasTable{
	KeyID:          {app: []string{"id", "serveId"}, persisted: []string{"$id", "_id", "serve_id"}},
	KeyCaseID:      {app: []string{"caseId"}, persisted: []string{"case_id"}},
	KeyClientID:    {app: []string{"clientId"}, persisted: []string{"client_id"}},
	KeyTimestamp:   {app: []string{"timestamp", "servedAt", "serveDate"}, persisted: []string{"served_at", "serve_date"}},
	KeyCreatedAt:   {app: []string{"createdAt"}, persisted: []string{"$createdAt", "created_at"}},
	KeyStatus:      {app: []string{"status"}, persisted: []string{"serve_status"}},
	KeyNotes:       {app: []string{"notes"}, persisted: []string{"serve_notes"}},
	KeyDescription: {app: []string{"description"}, persisted: []string{"serve_description"}},
	KeyServiceAddr: {app: []string{"serviceAddress", "address"}, persisted: []string{"service_address"}},
	KeyImageURL:    {app: []string{"imageUrl", "imageData", "photoUrl"}, persisted: []string{"image_url", "image_data", "photo_url"}},
	KeyPhysical:    {app: []string{"physicalDescription"}, persisted: []string{"physical_description"}},
	KeyLatitude:    {app: []string{"latitude", "lat"}, persisted: []string{"gps_lat", "gps_latitude"}},
	KeyLongitude:   {app: []string{"longitude", "lng", "lon"}, persisted: []string{"gps_lng", "gps_longitude"}},
	KeyAccuracy:    {app: []string{"accuracy"}, persisted: []string{"gps_accuracy"}},
	KeyCoordinates: {app: []string{"coordinates", "location"}, persisted: []string{"gps_coordinates"}},
}

// physicalAliases covers the nested physical description object. Both conventions
// share the same table since the nested keys were never renamed.
var physicalAliases = aliasTable{
	"sex":    {app: []string{"sex", "gender"}},
	"age":    {app: []string{"age", "approxAge"}, persisted: []string{"approx_age"}},
	"height": {app: []string{"height"}},
	"weight": {app: []string{"weight"}},
	"hair":   {app: []string{"hair", "hairColor"}, persisted: []string{"hair_color"}},
	"skin":   {app: []string{"skin", "skinColor", "race"}, persisted: []string{"skin_color"}},
	"other":  {app: []string{"other", "otherFeatures", "glasses"}, persisted: []string{"other_features"}},
}

// ordered returns the accepted keys with the detected convention first.
func (a alias) ordered(shape Shape) []string {
	keys := make([]string, 0, len(a.app)+len(a.persisted))
	if shape == ShapePersisted {
		keys = append(keys, a.persisted...)
		return append(keys, a.app...)
	}
	keys = append(keys, a.app...)
	return append(keys, a.persisted...)
}
