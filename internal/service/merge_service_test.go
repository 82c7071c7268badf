package service_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/lshigami/Polemos/internal/model"
	"github.com/lshigami/Polemos/internal/repository"
	"github.com/lshigami/Polemos/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newMergeService(db *gorm.DB) service.MergeService {
	return service.NewMergeService(
		repository.NewUserRepository(db),
		repository.NewAnswerRepository(db),
		repository.NewAchievementRepository(db),
		repository.NewVisitRepository(db),
		service.NewProgressionService(service.DefaultLevels(), 5.0),
		db,
	)
}

func TestMergeReassignsHistoryAndReconcilesXP(t *testing.T) {
	db := newTestDB(t)
	svc := newMergeService(db)

	anon := createUser(t, db, model.TierAnonymous, true)
	anon.XP = 30
	require.NoError(t, db.Save(anon).Error)
	require.NoError(t, db.Create(scoredAnswer(anon.ID, "q1", "technology", 7.0, 15)).Error)
	require.NoError(t, db.Create(scoredAnswer(anon.ID, "q2", "ethics", 7.0, 15)).Error)

	target := createUser(t, db, model.TierFree, false)
	target.XP = 10
	require.NoError(t, db.Save(target).Error)
	require.NoError(t, db.Create(scoredAnswer(target.ID, "q3", "technology", 7.0, 10)).Error)

	require.NoError(t, svc.Merge(anon.ID, target.ID))

	var merged model.User
	require.NoError(t, db.First(&merged, "id = ?", target.ID).Error)
	assert.Equal(t, 40, merged.XP)

	var answerCount int64
	require.NoError(t, db.Model(&model.Answer{}).Where("user_id = ?", target.ID).Count(&answerCount).Error)
	assert.Equal(t, int64(3), answerCount)

	// The anonymous row is gone entirely, not soft-deleted.
	var anonCount int64
	require.NoError(t, db.Unscoped().Model(&model.User{}).Where("id = ?", anon.ID).Count(&anonCount).Error)
	assert.Equal(t, int64(0), anonCount)
}

func TestMergeCarriesOverAchievementsAndVisits(t *testing.T) {
	db := newTestDB(t)
	svc := newMergeService(db)
	achievementRepo := repository.NewAchievementRepository(db)

	firstArgument, err := achievementRepo.FindByCode(service.AchFirstArgument)
	require.NoError(t, err)
	voicePioneer, err := achievementRepo.FindByCode(service.AchVoicePioneer)
	require.NoError(t, err)

	anon := createUser(t, db, model.TierAnonymous, true)
	require.NoError(t, achievementRepo.Award(anon.ID, firstArgument.ID))
	require.NoError(t, achievementRepo.Award(anon.ID, voicePioneer.ID))
	require.NoError(t, db.Create(&model.Visit{UserID: anon.ID, Path: "/api/v1/answers"}).Error)

	// The target already holds one of the two badges.
	target := createUser(t, db, model.TierFree, false)
	require.NoError(t, achievementRepo.Award(target.ID, firstArgument.ID))

	require.NoError(t, svc.Merge(anon.ID, target.ID))

	codes, err := achievementRepo.FindCodesByUser(target.ID)
	require.NoError(t, err)
	assert.True(t, codes[service.AchFirstArgument])
	assert.True(t, codes[service.AchVoicePioneer])

	var targetAwards int64
	require.NoError(t, db.Model(&model.UserAchievement{}).Where("user_id = ?", target.ID).Count(&targetAwards).Error)
	assert.Equal(t, int64(2), targetAwards, "overlapping badge is not duplicated")

	// Nothing belonging to the deleted anonymous row remains.
	var orphanAwards int64
	require.NoError(t, db.Model(&model.UserAchievement{}).Where("user_id = ?", anon.ID).Count(&orphanAwards).Error)
	assert.Zero(t, orphanAwards)
	var orphanVisits int64
	require.NoError(t, db.Model(&model.Visit{}).Where("user_id = ?", anon.ID).Count(&orphanVisits).Error)
	assert.Zero(t, orphanVisits)

	var movedVisits int64
	require.NoError(t, db.Model(&model.Visit{}).Where("user_id = ?", target.ID).Count(&movedVisits).Error)
	assert.Equal(t, int64(1), movedVisits)
}

func TestMergeSameUserIsNoOp(t *testing.T) {
	db := newTestDB(t)
	svc := newMergeService(db)

	user := createUser(t, db, model.TierFree, false)
	user.XP = 25
	require.NoError(t, db.Save(user).Error)
	require.NoError(t, db.Create(scoredAnswer(user.ID, "q1", "technology", 7.0, 25)).Error)

	require.NoError(t, svc.Merge(user.ID, user.ID))

	var after model.User
	require.NoError(t, db.First(&after, "id = ?", user.ID).Error)
	assert.Equal(t, 25, after.XP, "already-linked account must not double-count")
}

func TestMergeMissingAnonymousIsNoOp(t *testing.T) {
	db := newTestDB(t)
	svc := newMergeService(db)

	target := createUser(t, db, model.TierFree, false)
	require.NoError(t, svc.Merge(uuid.New(), target.ID))
}

func TestMergeRefusesNonAnonymousSource(t *testing.T) {
	db := newTestDB(t)
	svc := newMergeService(db)

	source := createUser(t, db, model.TierFree, false)
	require.NoError(t, db.Create(scoredAnswer(source.ID, "q1", "technology", 7.0, 20)).Error)
	target := createUser(t, db, model.TierFree, false)

	require.NoError(t, svc.Merge(source.ID, target.ID))

	var count int64
	require.NoError(t, db.Model(&model.Answer{}).Where("user_id = ?", source.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count, "a registered account is never treated as a merge source")
}
