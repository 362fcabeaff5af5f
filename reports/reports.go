package reports

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"roadsafe/cloudmedia"
	"roadsafe/db"
	"roadsafe/models"
	"roadsafe/mq"
	"roadsafe/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetReports returns every report, newest first, each joined with the
// owner's current profile image.
func GetReports(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: -1}})
	cursor, err := db.ReportsCollection.Find(ctx, bson.M{}, opts)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch reports")
		return
	}
	defer cursor.Close(ctx)

	var reports []models.Report
	if err := cursor.All(ctx, &reports); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error processing reports")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, attachProfileImages(reports, lookupProfileImages(ctx, reports)))
}

// lookupProfileImages resolves the reports' userId strings against the
// users collection in one query. Malformed ids are simply absent from
// the result.
func lookupProfileImages(ctx context.Context, reports []models.Report) map[string]string {
	var ids []primitive.ObjectID
	seen := make(map[string]struct{})
	for _, rep := range reports {
		if _, ok := seen[rep.UserID]; ok {
			continue
		}
		seen[rep.UserID] = struct{}{}
		if objID, err := primitive.ObjectIDFromHex(rep.UserID); err == nil {
			ids = append(ids, objID)
		}
	}

	pics := make(map[string]string)
	if len(ids) == 0 {
		return pics
	}

	cursor, err := db.UserCollection.Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"profileImage": 1}))
	if err != nil {
		return pics
	}
	defer cursor.Close(ctx)

	var owners []struct {
		ID           primitive.ObjectID `bson:"_id"`
		ProfileImage string             `bson:"profileImage"`
	}
	if err := cursor.All(ctx, &owners); err != nil {
		return pics
	}
	for _, o := range owners {
		if o.ProfileImage != "" {
			pics[o.ID.Hex()] = o.ProfileImage
		}
	}
	return pics
}

func attachProfileImages(reports []models.Report, pics map[string]string) []models.EnrichedReport {
	enriched := make([]models.EnrichedReport, 0, len(reports))
	for _, rep := range reports {
		e := models.EnrichedReport{Report: rep}
		if pic, ok := pics[rep.UserID]; ok {
			p := pic
			e.UserProfileImage = &p
		}
		enriched = append(enriched, e)
	}
	return enriched
}

// reportInput is the create payload; the update payload reuses it with
// presence tracked through pointers.
type reportInput struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Location    *string   `json:"location"`
	Lat         *float64  `json:"lat"`
	Lon         *float64  `json:"lon"`
	ImageUris   *[]string `json:"imageUris"`
	VideoUris   *[]string `json:"videoUris"`
}

// decodeReportInput reads either a JSON body or a multipart form, and
// returns any attached files alongside the fields.
func decodeReportInput(r *http.Request) (*reportInput, *cloudmedia.FormFiles, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		ff, err := cloudmedia.CollectFormFiles(r)
		if err != nil {
			return nil, nil, err
		}

		in := &reportInput{}
		form := r.MultipartForm.Value
		if vs, ok := form["title"]; ok && len(vs) > 0 {
			in.Title = &vs[0]
		}
		if vs, ok := form["description"]; ok && len(vs) > 0 {
			in.Description = &vs[0]
		}
		if vs, ok := form["location"]; ok && len(vs) > 0 {
			in.Location = &vs[0]
		}
		if vs, ok := form["lat"]; ok && len(vs) > 0 {
			in.Lat = ParseCoord(vs[0])
		}
		if vs, ok := form["lon"]; ok && len(vs) > 0 {
			in.Lon = ParseCoord(vs[0])
		}
		// Back-compat: clients may post hosted URLs directly instead
		// of files.
		if vs, ok := form["imageUris"]; ok {
			in.ImageUris = &vs
		}
		if vs, ok := form["videoUris"]; ok {
			in.VideoUris = &vs
		}
		return in, ff, nil
	}

	in := &reportInput{}
	if err := json.NewDecoder(r.Body).Decode(in); err != nil {
		return nil, nil, err
	}
	return in, &cloudmedia.FormFiles{}, nil
}

// ParseCoord parses a form-encoded coordinate; empty or malformed
// values become nil rather than an error, matching the optional field.
func ParseCoord(s string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &v
}

// AddReport creates a report owned by the authenticated user. Identity
// is always taken from the token, never from the body.
func AddReport(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	user := utils.GetUserFromRequest(r)
	if user == nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	in, ff, err := decodeReportInput(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	title, description := deref(in.Title), deref(in.Description)
	if strings.TrimSpace(title) == "" || strings.TrimSpace(description) == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Title and description are required")
		return
	}

	host, folder, configured := cloudmedia.FromEnv()
	imageUris, videoUris, err := mergeMedia(r.Context(), host, folder, configured, in, ff)
	if errors.Is(err, cloudmedia.ErrHostNotConfigured) {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to upload media: "+err.Error())
		return
	}

	report := models.Report{
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		User:        user.Name,
		UserID:      user.ID.Hex(),
		Location:    deref(in.Location),
		Lat:         in.Lat,
		Lon:         in.Lon,
		ImageUris:   imageUris,
		VideoUris:   videoUris,
		CreatedAt:   time.Now().UTC(),
	}

	res, err := db.ReportsCollection.InsertOne(r.Context(), report)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to save report")
		return
	}
	report.ID = res.InsertedID.(primitive.ObjectID)

	go mq.Emit(context.Background(), "report-created", models.Index{
		EntityType: "report", Method: "POST", EntityId: report.ID.Hex(),
	})

	utils.RespondWithJSON(w, http.StatusCreated, report)
}

// mergeMedia resolves the report's media arrays. Explicit URI lists in
// the body are kept; uploaded files replace the list of their own type
// only. An unconfigured host is an error only when files are attached.
func mergeMedia(ctx context.Context, host cloudmedia.Host, folder string, configured bool, in *reportInput, ff *cloudmedia.FormFiles) (imageUris, videoUris []string, err error) {
	imageUris, videoUris = []string{}, []string{}
	if in.ImageUris != nil {
		imageUris = *in.ImageUris
	}
	if in.VideoUris != nil {
		videoUris = *in.VideoUris
	}

	if ff.Count() == 0 {
		return imageUris, videoUris, nil
	}
	if !configured {
		return nil, nil, cloudmedia.ErrHostNotConfigured
	}

	newImages, newVideos, err := cloudmedia.UploadAll(ctx, host, folder, ff)
	if err != nil {
		return nil, nil, err
	}
	if len(ff.Images) > 0 {
		imageUris = newImages
	}
	if len(ff.Videos) > 0 {
		videoUris = newVideos
	}
	return imageUris, videoUris, nil
}

// ownedBy reports whether the requester is the stored owner of the
// report. An empty requester id never matches.
func ownedBy(rep *models.Report, userID string) bool {
	return userID != "" && rep.UserID == userID
}

// fetchOwned loads a report and enforces the ownership gate: 404 when
// missing, 403 when the requester is not the stored owner.
func fetchOwned(w http.ResponseWriter, r *http.Request, idParam, userID string) (*models.Report, bool) {
	objID, err := primitive.ObjectIDFromHex(idParam)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid report ID")
		return nil, false
	}

	var report models.Report
	err = db.ReportsCollection.FindOne(r.Context(), bson.M{"_id": objID}).Decode(&report)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Report not found")
		return nil, false
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return nil, false
	}

	if !ownedBy(&report, userID) {
		utils.RespondWithError(w, http.StatusForbidden, "You can only modify your own reports")
		return nil, false
	}
	return &report, true
}

// UpdateReport applies a partial update. Newly uploaded files replace
// the matching URI array wholesale; explicit URI arrays in the body are
// treated as the complete desired state. URLs dropped from an array are
// deleted from the host, and a failed host deletion never blocks the
// record update.
func UpdateReport(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	existing, ok := fetchOwned(w, r, ps.ByName("id"), utils.GetUserIDFromRequest(r))
	if !ok {
		return
	}

	in, ff, err := decodeReportInput(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	desiredImages, desiredVideos := in.ImageUris, in.VideoUris

	if ff.Count() > 0 {
		host, folder, ok := cloudmedia.FromEnv()
		if !ok {
			utils.RespondWithError(w, http.StatusBadRequest, cloudmedia.ErrHostNotConfigured.Error())
			return
		}
		newImages, newVideos, err := cloudmedia.UploadAll(r.Context(), host, folder, ff)
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to upload media: "+err.Error())
			return
		}
		if len(ff.Images) > 0 {
			desiredImages = &newImages
		}
		if len(ff.Videos) > 0 {
			desiredVideos = &newVideos
		}
	}

	updates := buildFieldUpdates(in)
	if desiredImages != nil {
		host, _, _ := cloudmedia.FromEnv()
		cloudmedia.DeleteURLs(r.Context(), host, cloudmedia.ResourceImage,
			cloudmedia.Reconcile(existing.ImageUris, *desiredImages))
		updates["imageUris"] = *desiredImages
	}
	if desiredVideos != nil {
		host, _, _ := cloudmedia.FromEnv()
		cloudmedia.DeleteURLs(r.Context(), host, cloudmedia.ResourceVideo,
			cloudmedia.Reconcile(existing.VideoUris, *desiredVideos))
		updates["videoUris"] = *desiredVideos
	}

	if len(updates) > 0 {
		_, err = db.ReportsCollection.UpdateOne(r.Context(),
			bson.M{"_id": existing.ID}, bson.M{"$set": updates})
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update report")
			return
		}
	}

	var updated models.Report
	if err := db.ReportsCollection.FindOne(r.Context(), bson.M{"_id": existing.ID}).Decode(&updated); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load updated report")
		return
	}

	go mq.Emit(context.Background(), "report-edited", models.Index{
		EntityType: "report", Method: "PUT", EntityId: updated.ID.Hex(),
	})

	utils.RespondWithJSON(w, http.StatusOK, updated)
}

// buildFieldUpdates maps provided scalar fields to a $set document;
// absent fields stay untouched.
func buildFieldUpdates(in *reportInput) bson.M {
	updates := bson.M{}
	if in.Title != nil {
		updates["title"] = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		updates["description"] = strings.TrimSpace(*in.Description)
	}
	if in.Location != nil {
		updates["location"] = strings.TrimSpace(*in.Location)
	}
	if in.Lat != nil {
		updates["lat"] = *in.Lat
	}
	if in.Lon != nil {
		updates["lon"] = *in.Lon
	}
	return updates
}

// DeleteReport removes the report's hosted media, then the document.
// Host failures are logged inside DeleteURLs and never roll back the
// Mongo deletion.
func DeleteReport(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	existing, ok := fetchOwned(w, r, ps.ByName("id"), utils.GetUserIDFromRequest(r))
	if !ok {
		return
	}

	host, _, _ := cloudmedia.FromEnv()
	cloudmedia.DeleteURLs(r.Context(), host, cloudmedia.ResourceImage, existing.ImageUris)
	cloudmedia.DeleteURLs(r.Context(), host, cloudmedia.ResourceVideo, existing.VideoUris)

	if _, err := db.ReportsCollection.DeleteOne(r.Context(), bson.M{"_id": existing.ID}); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete report")
		return
	}

	go mq.Emit(context.Background(), "report-deleted", models.Index{
		EntityType: "report", Method: "DELETE", EntityId: existing.ID.Hex(),
	})

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Report deleted"})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
