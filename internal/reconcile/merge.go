package reconcile

import "github.com/reelhire/reelhire/internal/models"

// MergeJobs applies the collection merge law to a remote and a local copy of
// the job collection:
//
//   - the server is authoritative for any job id it already knows about
//     (whole-document overwrite, no field-level merge)
//   - jobs that exist only locally (created offline) are appended and must
//     never be dropped
//
// The result preserves remote order, with local-only jobs following in their
// local order. Both inputs are left untouched. localOnly is the subset of
// local that was appended; a non-empty localOnly is the signal to push the
// merged set back to the server.
func MergeJobs(remote, local []models.Job) (merged []models.Job, localOnly []models.Job) {
	seen := make(map[string]struct{}, len(remote))
	merged = make([]models.Job, 0, len(remote)+len(local))

	for _, j := range remote {
		seen[j.ID] = struct{}{}
		merged = append(merged, j)
	}
	for _, j := range local {
		if _, ok := seen[j.ID]; ok {
			continue
		}
		seen[j.ID] = struct{}{}
		merged = append(merged, j)
		localOnly = append(localOnly, j)
	}
	return merged, localOnly
}

// MergeCandidates mirrors the job-level merge law one level down: the remote
// job's candidates win by id, purely-local candidates are appended. Needed
// because a candidate can be created by a freshly-submitted interview before
// the page that created it has synced. Everything else about the returned
// job comes from the remote side.
func MergeCandidates(remoteJob, localJob models.Job) models.Job {
	out := remoteJob

	seen := make(map[string]struct{}, len(remoteJob.Candidates))
	merged := make([]models.Candidate, 0, len(remoteJob.Candidates)+len(localJob.Candidates))

	for _, c := range remoteJob.Candidates {
		seen[c.ID] = struct{}{}
		merged = append(merged, c)
	}
	for _, c := range localJob.Candidates {
		if _, ok := seen[c.ID]; ok {
			continue
		}
		merged = append(merged, c)
	}

	out.Candidates = merged
	return out
}
