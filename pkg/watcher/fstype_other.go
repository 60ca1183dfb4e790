//go:build !linux && !darwin

package watcher

func detectFilesystemType(path string) FilesystemType {
	return FSTypeUnknown
}
