package repository

import (
	"errors"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PhotoRepository keeps listing photos in a GridFS bucket.
type PhotoRepository struct {
	DB *mongo.Database
}

func NewPhotoRepository(client *mongo.Client, dbName string) *PhotoRepository {
	return &PhotoRepository{DB: client.Database(dbName)}
}

// UploadPhoto stores the file and returns its hex file id.
func (r *PhotoRepository) UploadPhoto(file io.Reader, filename, listingID string) (string, error) {
	bucket, err := gridfs.NewBucket(r.DB)
	if err != nil {
		return "", fmt.Errorf("PhotoRepository.UploadPhoto: %w", err)
	}

	opts := options.GridFSUpload().SetMetadata(bson.D{{Key: "listing_id", Value: listingID}})
	stream, err := bucket.OpenUploadStream(filename, opts)
	if err != nil {
		return "", fmt.Errorf("PhotoRepository.UploadPhoto: %w", err)
	}
	defer stream.Close()

	if _, err := io.Copy(stream, file); err != nil {
		return "", fmt.Errorf("PhotoRepository.UploadPhoto: copy: %w", err)
	}

	return stream.FileID.(primitive.ObjectID).Hex(), nil
}

// DownloadPhoto returns the stored bytes and the original file name.
func (r *PhotoRepository) DownloadPhoto(photoID string) ([]byte, string, error) {
	objID, err := primitive.ObjectIDFromHex(photoID)
	if err != nil {
		return nil, "", fmt.Errorf("PhotoRepository.DownloadPhoto %s: %w", photoID, ErrNotFound)
	}

	bucket, err := gridfs.NewBucket(r.DB)
	if err != nil {
		return nil, "", fmt.Errorf("PhotoRepository.DownloadPhoto: %w", err)
	}

	stream, err := bucket.OpenDownloadStream(objID)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, "", fmt.Errorf("PhotoRepository.DownloadPhoto %s: %w", photoID, ErrNotFound)
	}
	if err != nil {
		return nil, "", fmt.Errorf("PhotoRepository.DownloadPhoto: %w", err)
	}
	defer stream.Close()

	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, "", fmt.Errorf("PhotoRepository.DownloadPhoto: read: %w", err)
	}

	name := "photo"
	if f := stream.GetFile(); f != nil && f.Name != "" {
		name = f.Name
	}
	return data, name, nil
}
