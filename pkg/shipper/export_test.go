package shipper

var RetryAfterDurationAt = retryAfterDuration
