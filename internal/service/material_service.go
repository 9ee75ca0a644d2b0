package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"cptncf_backend/internal/model"
	"cptncf_backend/internal/repository"
	"cptncf_backend/internal/util"
	"cptncf_backend/pkg/logger"

	"go.uber.org/zap"
)

// MaterialService handles teaching-material uploads: slide decks go straight
// to storage, session recordings are probed for duration first so the rubric
// can check session length.
type MaterialService struct {
	MaterialRepo *repository.MaterialRepository
	Storage      *StorageService
}

func NewMaterialService(materialRepo *repository.MaterialRepository, storage *StorageService) *MaterialService {
	return &MaterialService{
		MaterialRepo: materialRepo,
		Storage:      storage,
	}
}

// Upload stores the file and creates the material record. sessionDate may be
// nil for supplementary materials not tied to a teaching session.
func (s *MaterialService) Upload(
	ctx context.Context,
	uploaderID uint,
	groupID *uint,
	week int,
	title string,
	header *multipart.FileHeader,
	sessionDate *time.Time,
) (*model.TeachingMaterial, error) {
	isVideo := util.HasAllowedExtension(header.Filename, util.AllowedVideoExtensions)
	if !isVideo && !util.HasAllowedExtension(header.Filename, util.AllowedDocumentExtensions) {
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(header.Filename))
	}

	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	material := &model.TeachingMaterial{
		UUIDBase:    model.UUIDBase{ID: model.GenerateUUID()},
		UploaderID:  uploaderID,
		GroupID:     groupID,
		WeekNumber:  week,
		Title:       title,
		ContentType: header.Header.Get("Content-Type"),
		SizeBytes:   header.Size,
		SubmittedAt: time.Now(),
		SessionDate: sessionDate,
	}

	objectName := fmt.Sprintf("materials/%d/week%d/%s%s",
		uploaderID, week, material.ID, filepath.Ext(header.Filename))

	if isVideo {
		// Recordings are staged to disk so ffprobe can read them.
		url, duration, err := s.uploadRecording(ctx, objectName, file, material.ContentType)
		if err != nil {
			return nil, err
		}
		material.FileURL = url
		material.DurationSeconds = duration
	} else {
		url, err := s.Storage.Upload(ctx, objectName, file, header.Size, material.ContentType)
		if err != nil {
			return nil, err
		}
		material.FileURL = url
	}

	if err := s.MaterialRepo.Create(material); err != nil {
		return nil, err
	}

	logger.Log.Info("teaching material uploaded",
		zap.String("material_id", material.ID),
		zap.Uint("uploader_id", uploaderID),
		zap.Bool("recording", isVideo))
	return material, nil
}

func (s *MaterialService) uploadRecording(ctx context.Context, objectName string, file multipart.File, contentType string) (string, *float64, error) {
	tmp, err := os.CreateTemp("", "recording-*"+filepath.Ext(objectName))
	if err != nil {
		return "", nil, err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		return "", nil, err
	}
	tmp.Close()

	var duration *float64
	if info, err := util.ProbeVideo(tmp.Name()); err != nil {
		// Unprobeable uploads are still stored; the duration just stays
		// unknown.
		logger.Log.Warn("recording probe failed", zap.Error(err))
	} else {
		duration = &info.Duration
	}

	url, err := s.Storage.UploadFile(ctx, objectName, tmp.Name(), contentType)
	if err != nil {
		return "", nil, err
	}
	return url, duration, nil
}

func (s *MaterialService) ListByUploader(uploaderID uint) ([]model.TeachingMaterial, error) {
	return s.MaterialRepo.ListByUploader(uploaderID)
}

func (s *MaterialService) ListByGroupAndWeek(groupID uint, week int) ([]model.TeachingMaterial, error) {
	return s.MaterialRepo.ListByGroupAndWeek(groupID, week)
}

func (s *MaterialService) Delete(ctx context.Context, id string) error {
	material, err := s.MaterialRepo.FindByID(id)
	if err != nil {
		return err
	}
	if err := s.MaterialRepo.Delete(id); err != nil {
		return err
	}
	// Best effort; the record is already gone.
	if material.FileURL != "" {
		_ = s.Storage.Delete(ctx, material.FileURL)
	}
	return nil
}
