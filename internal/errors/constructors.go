package errors

// Convenience constructors for the error kinds the build reports.

// Config errors

func ConfigNotFound(path string) *BuildError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ValidationFailed(field, reason string) *BuildError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Content errors

// MalformedFrontMatter reports a front-matter block that could not be
// parsed: missing closing delimiter, invalid YAML, or a missing required
// field.
func MalformedFrontMatter(file string, cause error) *BuildError {
	return Wrap(cause, CategoryFrontMatter, SeverityFatal, "malformed front matter").
		WithFile(file)
}

// RenderFailed reports a Markdown body that could not be rendered.
func RenderFailed(file string, cause error) *BuildError {
	return Wrap(cause, CategoryRender, SeverityFatal, "markdown rendering failed").
		WithFile(file)
}

// EmptySlug reports a file whose name yields no slug characters, which
// would otherwise route the page onto the site index.
func EmptySlug(file string) *BuildError {
	return New(CategoryRoute, SeverityFatal, "file name produces an empty slug").
		WithFile(file)
}

// DuplicateRoute reports two documents resolving to the same output path.
func DuplicateRoute(route, file, conflictingFile string) *BuildError {
	return New(CategoryRoute, SeverityFatal, "duplicate output route").
		WithFile(file).
		WithContext("route", route).
		WithContext("conflicts_with", conflictingFile)
}

// MissingAsset reports a rendered page referencing an asset that does not
// exist in the output tree.
func MissingAsset(file, ref string) *BuildError {
	return New(CategoryAsset, SeverityFatal, "referenced asset not found").
		WithFile(file).
		WithContext("ref", ref)
}

// Infrastructure errors

// IOFailure reports a read or write failure during the build.
func IOFailure(operation, file string, cause error) *BuildError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "i/o failure").
		WithFile(file).
		WithContext("operation", operation)
}

func GitCloneFailed(url string, cause error) *BuildError {
	return Wrap(cause, CategoryGit, SeverityFatal, "content clone failed").
		WithContext("url", url)
}

func ServerError(message string, cause error) *BuildError {
	return Wrap(cause, CategoryServer, SeverityError, message)
}
