package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"checklist-cli/internal/model"
	"checklist-cli/internal/outline"
)

func newTemplate() model.Template {
	return model.Template{
		Name:     "Bracket inspection",
		Category: "incoming",
		IsActive: true,
		Items: []model.ChecklistItem{
			{Title: "Dimensions", Children: []model.ChecklistItem{
				{Title: "Width", SampleImages: model.SampleImages{{URL: "/w.png", Status: "uploading"}}},
			}},
			{Title: "Finish"},
		},
	}
}

func TestCreateTemplate_AssignsIDsAndFlattens(t *testing.T) {
	ctx := context.Background()
	s := Store{Dir: t.TempDir()}

	created, err := s.CreateTemplate(ctx, newTemplate())
	require.NoError(t, err)
	require.NotNil(t, created.ID)
	require.Equal(t, "1.0", created.Version)
	require.Len(t, created.Items, 3)
	for _, it := range created.Items {
		require.NotNil(t, it.ID, "item %q has no id", it.Title)
		require.Nil(t, it.Children)
	}
	require.Equal(t, 1, created.Items[1].Level)
	require.Empty(t, created.Items[1].SampleImages[0].Status)

	loaded, err := s.LoadTemplate(ctx, *created.ID)
	require.NoError(t, err)
	require.Equal(t, created.Name, loaded.Name)
	require.Equal(t, *created.Items[2].ID, *loaded.Items[2].ID)

	draft, err := s.LoadDraft(ctx, *created.ID)
	require.NoError(t, err)
	require.Len(t, draft.Items, 3)
}

func TestCreateTemplate_RequiresName(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	_, err := s.CreateTemplate(context.Background(), model.Template{})
	require.Error(t, err)
}

func TestSaveDraft_AssignsIDsToNewItemsOnly(t *testing.T) {
	ctx := context.Background()
	s := Store{Dir: t.TempDir()}
	created, err := s.CreateTemplate(ctx, newTemplate())
	require.NoError(t, err)

	ed := outline.NewEditor(created.Items)
	ed.Add(model.ChecklistItem{Title: "Packaging"})
	draft := created
	draft.Items = ed.Items()

	saved, err := s.SaveDraft(ctx, draft)
	require.NoError(t, err)
	require.Len(t, saved.Items, 4)
	require.Equal(t, *created.Items[0].ID, *saved.Items[0].ID)
	require.NotNil(t, saved.Items[3].ID)

	seen := map[int64]bool{}
	for _, it := range saved.Items {
		require.False(t, seen[*it.ID], "duplicate id %d", *it.ID)
		seen[*it.ID] = true
	}

	again, err := s.LoadDraft(ctx, *created.ID)
	require.NoError(t, err)
	require.Equal(t, *saved.Items[3].ID, *again.Items[3].ID)
}

func TestSaveDraft_UnknownTemplate(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	id := int64(42)
	_, err := s.SaveDraft(context.Background(), model.Template{ID: &id, Name: "x"})

	var nf NotFoundError
	require.True(t, errors.As(err, &nf), "got %v", err)
	require.Equal(t, "template", nf.Kind)

	_, err = s.SaveDraft(context.Background(), model.Template{Name: "no id"})
	require.Error(t, err)
}

func TestListAndDeleteTemplates(t *testing.T) {
	ctx := context.Background()
	s := Store{Dir: t.TempDir()}
	a, err := s.CreateTemplate(ctx, newTemplate())
	require.NoError(t, err)
	other := newTemplate()
	other.Name = "Weld inspection"
	b, err := s.CreateTemplate(ctx, other)
	require.NoError(t, err)

	draft := a
	draft.Description = "edited"
	_, err = s.SaveDraft(ctx, draft)
	require.NoError(t, err)

	infos, err := s.ListTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	require.True(t, infos[0].HasDraft)
	require.False(t, infos[1].HasDraft)
	require.Equal(t, 3, infos[1].Items)

	require.NoError(t, s.DeleteTemplate(ctx, *b.ID))
	_, err = s.LoadTemplate(ctx, *b.ID)
	require.ErrorAs(t, err, &NotFoundError{})
	require.ErrorAs(t, s.DeleteTemplate(ctx, *b.ID), &NotFoundError{})
}

func TestCreateTemplate_KeepsPassthroughItemFields(t *testing.T) {
	ctx := context.Background()
	s := Store{Dir: t.TempDir()}
	secs := 20

	tpl := newTemplate()
	tpl.Items[1].Links = []model.ItemLink{{Title: "Finish data sheet", URL: "https://example.test/finish"}}
	tpl.Items[1].SampleVideos = []model.SampleImage{{URL: "/finish.mp4", Status: "uploading"}}
	tpl.Items[1].SubmissionType = "either"
	tpl.Items[1].SubmissionTimeSeconds = &secs

	created, err := s.CreateTemplate(ctx, tpl)
	require.NoError(t, err)

	loaded, err := s.LoadTemplate(ctx, *created.ID)
	require.NoError(t, err)
	finish := loaded.Items[2]
	require.Equal(t, "Finish", finish.Title)
	require.Equal(t, tpl.Items[1].Links, finish.Links)
	require.Len(t, finish.SampleVideos, 1)
	require.Equal(t, "/finish.mp4", finish.SampleVideos[0].URL)
	require.Empty(t, finish.SampleVideos[0].Status)
	require.Equal(t, "either", finish.SubmissionType)
	require.NotNil(t, finish.SubmissionTimeSeconds)
	require.Equal(t, 20, *finish.SubmissionTimeSeconds)
}
