package reports

import "grievancedesk/backend/internal/models"

// applyChange folds one realtime event into a newest-first list and returns the
// resulting list. The input slice is never modified, so previously returned
// snapshots stay valid. Application is idempotent by id: an INSERT for a known
// id replaces it in place, UPDATE and DELETE for unknown ids are no-ops.
func applyChange[T models.Record](list []T, change models.Change[T]) []T {
	switch change.Type {
	case models.ChangeInsert:
		if i := indexOf(list, change.New.GetID()); i >= 0 {
			return replaceAt(list, i, change.New)
		}
		out := make([]T, 0, len(list)+1)
		out = append(out, change.New)
		return append(out, list...)

	case models.ChangeUpdate:
		if i := indexOf(list, change.New.GetID()); i >= 0 {
			return replaceAt(list, i, change.New)
		}

	case models.ChangeDelete:
		if i := indexOf(list, change.OldID); i >= 0 {
			out := make([]T, 0, len(list)-1)
			out = append(out, list[:i]...)
			return append(out, list[i+1:]...)
		}
	}
	return list
}

func indexOf[T models.Record](list []T, id string) int {
	for i, r := range list {
		if r.GetID() == id {
			return i
		}
	}
	return -1
}

func replaceAt[T any](list []T, i int, v T) []T {
	out := make([]T, len(list))
	copy(out, list)
	out[i] = v
	return out
}
